package repository

import (
	"staybook/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestOverlapFilter(t *testing.T) {
	in := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	out := time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		sameDayTurnover bool
		wantStart       string
		wantEnd         string
	}{
		{"inclusive", false, "$lte", "$gte"},
		{"half open", true, "$lt", "$gt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := overlapFilter("room-1", in, out, tt.sameDayTurnover)

			if f["room"] != "room-1" {
				t.Errorf("room = %v", f["room"])
			}
			status, ok := f["status"].(bson.M)
			if !ok || status["$ne"] != model.BookingStatusCancelled {
				t.Errorf("cancelled bookings must be excluded, got %v", f["status"])
			}
			start, ok := f["check_in_date"].(bson.M)
			if !ok || !start[tt.wantStart].(time.Time).Equal(out) {
				t.Errorf("check_in_date = %v, want %s %v", f["check_in_date"], tt.wantStart, out)
			}
			end, ok := f["check_out_date"].(bson.M)
			if !ok || !end[tt.wantEnd].(time.Time).Equal(in) {
				t.Errorf("check_out_date = %v, want %s %v", f["check_out_date"], tt.wantEnd, in)
			}
		})
	}
}
