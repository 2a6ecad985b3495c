package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "calendar date", input: "2025-07-14", want: NewDate(2025, time.July, 14)},
		{name: "utc timestamp", input: "2025-07-14T00:00:00.000Z", want: NewDate(2025, time.July, 14)},
		{name: "offset timestamp", input: "2025-07-14T02:00:00+05:00", want: NewDate(2025, time.July, 13)},
		{name: "empty", input: "", want: Date{}},
		{name: "garbage", input: "14/07/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.December, 31)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-12-31"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestAccount_DecodesEitherIDField(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "mongo id", body: `{"_id":"a1","username":"alice","role":"user"}`, want: "a1"},
		{name: "plain id", body: `{"id":"a2","username":"alice","role":"user"}`, want: "a2"},
		{name: "both prefers mongo id", body: `{"_id":"a1","id":"a2","username":"alice"}`, want: "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Account
			require.NoError(t, json.Unmarshal([]byte(tt.body), &a))
			assert.Equal(t, tt.want, a.ID)
			assert.Equal(t, "alice", a.Username)
		})
	}
}

func TestAccountRef(t *testing.T) {
	var ref AccountRef
	require.NoError(t, json.Unmarshal([]byte(`"owner-1"`), &ref))
	assert.Equal(t, "owner-1", ref.ID)
	assert.Nil(t, ref.Account)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"owner-2","username":"bob","role":"owner"}`), &ref))
	assert.Equal(t, "owner-2", ref.ID)
	require.NotNil(t, ref.Account)
	assert.Equal(t, RoleOwner, ref.Account.Role)

	require.NoError(t, json.Unmarshal([]byte(`null`), &ref))
	assert.Equal(t, AccountRef{}, ref)
}

func TestVenue_Decode(t *testing.T) {
	body := `{
		"_id": "v1",
		"name": "Grand Hall",
		"images": ["a.jpg"],
		"district": "Chilonzor",
		"address": "Bunyodkor 1",
		"capacity": 100,
		"pricePerSeat": 50000,
		"phone": "+998901234567",
		"owner": {"_id": "o1", "username": "owner1", "role": "owner"},
		"status": "approved",
		"bookedDates": [
			{"_id": "b1", "date": "2025-07-14T00:00:00.000Z", "userId": "u1"},
			"2025-07-20"
		]
	}`

	var v Venue
	require.NoError(t, json.Unmarshal([]byte(body), &v))

	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "o1", v.OwnerID())
	assert.Equal(t, VenueStatusApproved, v.Status)
	require.Len(t, v.BookedDates, 2)
	assert.Equal(t, "b1", v.BookedDates[0].BookingID)
	assert.Equal(t, "u1", v.BookedDates[0].UserID)
	assert.True(t, v.IsBooked(NewDate(2025, time.July, 14)))
	assert.True(t, v.IsBooked(NewDate(2025, time.July, 20)))
	assert.False(t, v.IsBooked(NewDate(2025, time.July, 15)))
}

func TestBooking_DecodeRefs(t *testing.T) {
	body := `{
		"id": "b1",
		"user": "u1",
		"venue": {"_id": "v1", "name": "Grand Hall", "owner": "o1"},
		"date": "2025-07-14",
		"guestCount": 40,
		"totalPrice": 2000000,
		"status": "pending"
	}`

	var b Booking
	require.NoError(t, json.Unmarshal([]byte(body), &b))

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "u1", b.User.ID)
	assert.Nil(t, b.User.Account)
	assert.Equal(t, "v1", b.Venue.ID)
	require.NotNil(t, b.Venue.Venue)
	assert.Equal(t, "o1", b.Venue.Venue.OwnerID())
	assert.Equal(t, "2025-07-14", b.Date.String())
}

func TestVenueFilter_Query(t *testing.T) {
	tests := []struct {
		name   string
		filter VenueFilter
		want   string
	}{
		{name: "empty", filter: VenueFilter{}, want: ""},
		{name: "limit only", filter: VenueFilter{Limit: Ptr(3)}, want: "limit=3"},
		{name: "zero capacity is sent", filter: VenueFilter{Capacity: Ptr(0)}, want: "capacity=0"},
		{
			name: "full",
			filter: VenueFilter{
				Query:           "hall",
				District:        "Yunusobod",
				MinPricePerSeat: Ptr(10000.0),
				MaxPricePerSeat: Ptr(90000.0),
				FromDate:        Ptr(NewDate(2025, time.July, 1)),
			},
			want: "district=Yunusobod&fromDate=2025-07-01&maxPricePerSeat=90000&minPricePerSeat=10000&query=hall",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := query.Values(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values.Encode())
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("superuser").Valid())
}
