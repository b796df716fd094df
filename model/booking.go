package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a reservation of one listing by one renter. RentFee, CarModel,
// Location and ImageUrl are copied from the listing when the booking is made
// and do not follow later edits.
type Booking struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CarId       primitive.ObjectID `json:"carId" bson:"carId"`
	UserEmail   string             `json:"userEmail" bson:"userEmail"`
	BookingDate time.Time          `json:"bookingDate" bson:"bookingDate"`
	RentFee     float64            `json:"rentFee" bson:"rentFee"`
	CarModel    string             `json:"carModel" bson:"carModel"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	ImageUrl    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

type BookingRequest struct {
	CarId       string    `json:"carId"`
	UserEmail   string    `json:"userEmail"`
	BookingDate time.Time `json:"bookingDate"`
}
