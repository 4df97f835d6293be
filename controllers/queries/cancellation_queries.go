package queries

type CancelPayload struct {
	CancelledBy string `json:"cancelled_by" validate:"required|in:owner,user"`
}
