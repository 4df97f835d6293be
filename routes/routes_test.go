package routes_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zsmartex/venuex/controllers/admin_controllers"
	"github.com/zsmartex/venuex/controllers/auth"
	"github.com/zsmartex/venuex/controllers/entities"
	"github.com/zsmartex/venuex/controllers/helpers"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/routes"
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/testutil"
	"github.com/zsmartex/venuex/types"
	"gorm.io/gorm"
)

type suiteRouterTester struct {
	suite.Suite

	db          *gorm.DB
	app         *fiber.App
	private_key *rsa.PrivateKey
}

func (s *suiteRouterTester) SetupSuite() {
	private_key, err := rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)
	s.private_key = private_key
}

func (s *suiteRouterTester) SetupTest() {
	public_key, err := x509.MarshalPKIXPublicKey(&s.private_key.PublicKey)
	s.Require().NoError(err)
	public_key_pem := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: public_key})
	s.T().Setenv("JWT_PUBLIC_KEY", base64.StdEncoding.EncodeToString(public_key_pem))

	s.db = testutil.NewDatabase(s.T())
	s.app = routes.SetupRouter(admin_controllers.NewHandler(s.db, nil, bank_service.NewLedgerTransferer()))
}

func (s *suiteRouterTester) token(role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, &auth.Auth{
		UID:   "UID0000000001",
		State: "active",
		Email: "ops@venuex.test",
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})

	signed, err := token.SignedString(s.private_key)
	s.Require().NoError(err)

	return signed
}

func (s *suiteRouterTester) request(method, path, role string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(role) > 0 {
		req.Header.Set("Authorization", "Bearer "+s.token(role))
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp.StatusCode, buf
}

func (s *suiteRouterTester) errors(buf []byte) []string {
	var errs helpers.Errors
	s.Require().NoError(json.Unmarshal(buf, &errs))

	return errs.Errors
}

func (s *suiteRouterTester) TestRejectsMissingToken() {
	status, buf := s.request(http.MethodPost, "/api/v1/admin/escrow/release", "", nil)

	s.Equal(401, status)
	s.Equal([]string{"authz.invalid_session"}, s.errors(buf))
}

func (s *suiteRouterTester) TestRejectsForgedToken() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/escrow/release", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(401, resp.StatusCode)
}

func (s *suiteRouterTester) TestRejectsNonAdmin() {
	status, buf := s.request(http.MethodPost, "/api/v1/admin/payouts/process", "member", nil)

	s.Equal(403, status)
	s.Equal([]string{"authz.invalid_permission"}, s.errors(buf))
}

func (s *suiteRouterTester) TestCreateCommission() {
	booking := testutil.CreateBooking(s.T(), s.db, 7, types.BookingStatusCompleted, "100", time.Now().Add(-time.Hour))

	status, buf := s.request(http.MethodPost, "/api/v1/admin/commissions", "admin", map[string]interface{}{
		"reservation_id": booking.ID,
		"owner_id":       7,
		"amount":         "100",
	})
	s.Require().Equal(201, status, string(buf))

	var commission entities.CommissionEntity
	s.Require().NoError(json.Unmarshal(buf, &commission))
	s.Equal(types.TierBronze, commission.Tier)
	s.Equal("10.00", commission.CommissionAmount.StringFixed(2))
	s.Equal("90.00", commission.OwnerPayout.StringFixed(2))
	s.Equal(types.CommissionStatusHeld, commission.Status)

	status, buf = s.request(http.MethodGet, "/api/v1/admin/commissions?owner_id=7&status=held", "superadmin", nil)
	s.Require().Equal(200, status)

	var commissions []entities.CommissionEntity
	s.Require().NoError(json.Unmarshal(buf, &commissions))
	s.Len(commissions, 1)
}

func (s *suiteRouterTester) TestCreateCommissionValidation() {
	status, buf := s.request(http.MethodPost, "/api/v1/admin/commissions", "admin", map[string]interface{}{
		"owner_id": 7,
		"amount":   "100",
	})
	s.Equal(422, status)
	s.NotEmpty(s.errors(buf))

	status, buf = s.request(http.MethodPost, "/api/v1/admin/commissions", "admin", map[string]interface{}{
		"reservation_id": 1,
		"owner_id":       7,
		"amount":         "0",
	})
	s.Equal(422, status)
	s.Equal([]string{"reservation amount must be positive, got 0"}, s.errors(buf))
}

func (s *suiteRouterTester) TestListCommissionsRejectsUnknownStatus() {
	status, _ := s.request(http.MethodGet, "/api/v1/admin/commissions?status=paid", "admin", nil)

	s.Equal(422, status)
}

func (s *suiteRouterTester) TestCancelReservation() {
	booking := testutil.CreateBooking(s.T(), s.db, 7, types.BookingStatusAccepted, "200", time.Now().Add(30*time.Hour+30*time.Minute))
	testutil.CreatePayment(s.T(), s.db, booking)

	status, buf := s.request(http.MethodPost, "/api/v1/admin/reservations/"+jsonID(booking.ID)+"/cancel", "admin", map[string]interface{}{
		"cancelled_by": "user",
	})
	s.Require().Equal(200, status, string(buf))

	var result struct {
		RefundAmount     decimal.Decimal `json:"refund_amount"`
		CommissionAmount decimal.Decimal `json:"commission_amount"`
	}
	s.Require().NoError(json.Unmarshal(buf, &result))
	s.Equal("100.00", result.RefundAmount.StringFixed(2))
	s.Equal("10.00", result.CommissionAmount.StringFixed(2))
}

func (s *suiteRouterTester) TestCancelReservationValidation() {
	status, _ := s.request(http.MethodPost, "/api/v1/admin/reservations/1/cancel", "admin", map[string]interface{}{
		"cancelled_by": "venue",
	})
	s.Equal(422, status)

	status, _ = s.request(http.MethodPost, "/api/v1/admin/reservations/404/cancel", "admin", map[string]interface{}{
		"cancelled_by": "owner",
	})
	s.Equal(404, status)
}

func (s *suiteRouterTester) TestBatchesAnswerWithSummary() {
	status, buf := s.request(http.MethodPost, "/api/v1/admin/escrow/release", "admin", nil)
	s.Require().Equal(200, status)
	s.Contains(string(buf), `"released_count":0`)

	status, buf = s.request(http.MethodPost, "/api/v1/admin/payouts/process", "admin", nil)
	s.Require().Equal(200, status)
	s.Contains(string(buf), `"processed_count":0`)
}

func (s *suiteRouterTester) TestOwnerTier() {
	status, _ := s.request(http.MethodGet, "/api/v1/admin/owners/9/tier", "admin", nil)
	s.Equal(404, status)

	status, buf := s.request(http.MethodPost, "/api/v1/admin/owners/9/tier", "admin", nil)
	s.Equal(404, status)
	s.Equal([]string{"owner tier 9 not found"}, s.errors(buf))

	testutil.CreateOwnerTier(s.T(), s.db, &models.OwnerTier{OwnerID: 9})

	for i := 0; i < 20; i++ {
		testutil.CreateBooking(s.T(), s.db, 9, types.BookingStatusCompleted, "50", time.Now().Add(-time.Hour))
	}

	status, buf = s.request(http.MethodPost, "/api/v1/admin/owners/9/tier", "admin", nil)
	s.Require().Equal(200, status, string(buf))
	s.Contains(string(buf), `"current_tier":"silver"`)

	status, buf = s.request(http.MethodGet, "/api/v1/admin/owners/9/tier", "admin", nil)
	s.Require().Equal(200, status)

	var owner_tier entities.OwnerTierEntity
	s.Require().NoError(json.Unmarshal(buf, &owner_tier))
	s.Equal(types.TierSilver, owner_tier.CurrentTier)
	s.Equal(types.TierGold, owner_tier.NextTier)
	s.Equal(int64(20), owner_tier.TotalReservations)
}

func jsonID(id uint64) string {
	buf, _ := json.Marshal(id)
	return string(buf)
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(suiteRouterTester))
}
