package types

type Tier string

var (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

type CommissionStatus = string

var (
	CommissionStatusHeld      CommissionStatus = "held"
	CommissionStatusReleased  CommissionStatus = "released"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

type PayoutStatus = string

var (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
)

type BookingStatus = string

var (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRejected  BookingStatus = "rejected"
)

type PaymentStatus = string

var (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type CancelledBy = string

var (
	CancelledByOwner CancelledBy = "owner"
	CancelledByUser  CancelledBy = "user"
)

type NotificationType = string

var (
	NotificationTypeTierUpgrade NotificationType = "tier_upgrade"
	NotificationTypeRefund      NotificationType = "refund"
	NotificationTypePayout      NotificationType = "payout"
)

type ReferenceType = string

var (
	ReferenceCommission  ReferenceType = "commission"
	ReferenceBooking     ReferenceType = "booking"
	ReferencePayoutBatch ReferenceType = "payout_batch"
	ReferenceOwnerTier   ReferenceType = "owner_tier"
)
