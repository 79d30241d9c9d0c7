package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCreateBookingInactivePlaceWritesNothing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejected booking leaves no insert or balance credit", func(mt *mtest.T) {
		placeID := primitive.NewObjectID()
		ownerID := primitive.NewObjectID()
		renterID := primitive.NewObjectID()

		placeDoc := bson.D{
			{Key: "_id", Value: placeID},
			{Key: "owner", Value: ownerID},
			{Key: "title", Value: "Cabane perchée"},
			{Key: "address", Value: "Forêt de Brocéliande"},
			{Key: "maxGuests", Value: 4},
			{Key: "price", Value: 100.0},
			{Key: "isActive", Value: false},
		}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(), // connectivity ping
			mtest.CreateCursorResponse(0, "atypikhouse.places", mtest.FirstBatch, placeDoc),
			mtest.CreateSuccessResponse(), // transaction abort
		)

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := fmt.Sprintf(
			`{"place":%q,"checkIn":"2025-06-01","checkOut":"2025-06-03","numOfGuests":2,"name":"Léa Martin","phone":"0601020304","price":200}`,
			placeID.Hex(),
		)
		c.Request = httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("userId", renterID)

		CreateBooking(mt.DB)(c)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusBadRequest, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "disponible") {
			mt.Fatalf("unexpected response body: %s", w.Body.String())
		}

		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "insert" || evt.CommandName == "update" {
				mt.Fatalf("rejected booking issued a %s command", evt.CommandName)
			}
		}
	})
}
