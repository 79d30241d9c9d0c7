package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"backend/internal/models"
)

func TestComputeOwnerStatsEmpty(t *testing.T) {
	stats := computeOwnerStats(nil, nil, 0)

	if stats.TotalPlaces != 0 || stats.ActivePlaces != 0 || stats.InactivePlaces != 0 {
		t.Fatalf("expected zero place counts, got %+v", stats)
	}
	if stats.TotalBookings != 0 || stats.TotalRevenue != 0 || stats.CurrentBalance != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
}

func TestComputeOwnerStats(t *testing.T) {
	places := []models.Place{
		{IsActive: true},
		{IsActive: true},
		{IsActive: false},
	}
	bookings := []models.Booking{
		{Price: 300},
		{Price: 150.5},
	}

	stats := computeOwnerStats(places, bookings, 405.45)

	if stats.TotalPlaces != 3 {
		t.Fatalf("TotalPlaces = %d, want 3", stats.TotalPlaces)
	}
	if stats.ActivePlaces != 2 || stats.InactivePlaces != 1 {
		t.Fatalf("active/inactive = %d/%d, want 2/1", stats.ActivePlaces, stats.InactivePlaces)
	}
	if stats.ActivePlaces+stats.InactivePlaces != stats.TotalPlaces {
		t.Fatal("active + inactive must equal total")
	}
	if stats.TotalBookings != 2 {
		t.Fatalf("TotalBookings = %d, want 2", stats.TotalBookings)
	}
	if math.Abs(stats.TotalRevenue-450.5) > 1e-9 {
		t.Fatalf("TotalRevenue = %v, want 450.5", stats.TotalRevenue)
	}
	if stats.CurrentBalance != 405.45 {
		t.Fatalf("CurrentBalance = %v, want 405.45", stats.CurrentBalance)
	}
}

func TestValidateWithdrawalAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"positive", 50, false},
		{"smallest unit", 0.01, false},
		{"zero", 0, true},
		{"negative", -10, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateWithdrawalAmount(tc.amount)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestOwnerBookingSerializesRenterAndPlace(t *testing.T) {
	renter := models.UserSummary{
		ID:        primitive.NewObjectID(),
		FirstName: "Léa",
		LastName:  "Martin",
		Email:     "lea.martin@example.fr",
	}
	place := models.PlaceSummary{
		ID:      primitive.NewObjectID(),
		Title:   "Cabane perchée",
		Address: "Forêt de Brocéliande",
		Price:   80,
	}
	entry := ownerBooking{
		Booking: models.Booking{
			ID:        primitive.NewObjectID(),
			User:      renter.ID,
			Place:     place.ID,
			CheckIn:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:  time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			Price:     160,
			CreatedAt: time.Now(),
		},
		PlaceDoc:  &place,
		RenterDoc: &renter,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var gotRenter models.UserSummary
	if err := json.Unmarshal(payload["user"], &gotRenter); err != nil {
		t.Fatalf("user field is not a renter summary: %v", err)
	}
	if gotRenter.Email != renter.Email || gotRenter.FirstName != renter.FirstName {
		t.Fatalf("renter summary = %+v, want %+v", gotRenter, renter)
	}

	var gotPlace models.PlaceSummary
	if err := json.Unmarshal(payload["place"], &gotPlace); err != nil {
		t.Fatalf("place field is not a place summary: %v", err)
	}
	if gotPlace.Title != place.Title {
		t.Fatalf("place summary = %+v, want %+v", gotPlace, place)
	}
}

func TestRequestWithdrawalIssuesConditionalDecrement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("funds check and debit travel in one statement", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		updatedDoc := bson.D{
			{Key: "_id", Value: userID},
			{Key: "email", Value: "owner@example.fr"},
			{Key: "role", Value: models.RoleOwner},
			{Key: "balance", Value: 0.0},
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: updatedDoc},
			bson.E{Key: "lastErrorObject", Value: bson.D{
				{Key: "n", Value: 1},
				{Key: "updatedExisting", Value: true},
			}},
		))

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/owner/withdrawal", strings.NewReader(`{"amount":50}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("userId", userID)

		RequestWithdrawal(mt.DB)(c)

		if w.Code != http.StatusOK {
			mt.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "findAndModify" {
			mt.Fatalf("first command = %+v, want findAndModify", evt)
		}

		var filter struct {
			Balance struct {
				Gte float64 `bson:"$gte"`
			} `bson:"balance"`
		}
		if err := evt.Command.Lookup("query").Unmarshal(&filter); err != nil {
			mt.Fatalf("decode query: %v", err)
		}
		if filter.Balance.Gte != 50 {
			mt.Fatalf("filter balance $gte = %v, want 50", filter.Balance.Gte)
		}

		var update struct {
			Inc struct {
				Balance float64 `bson:"balance"`
			} `bson:"$inc"`
		}
		if err := evt.Command.Lookup("update").Unmarshal(&update); err != nil {
			mt.Fatalf("decode update: %v", err)
		}
		if update.Inc.Balance != -50 {
			mt.Fatalf("update $inc balance = %v, want -50", update.Inc.Balance)
		}
	})
}
