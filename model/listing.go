package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Availability string

const (
	Available   Availability = "Available"
	Unavailable Availability = "Unavailable"
)

type Publisher struct {
	Email string `json:"email" bson:"email"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
}

type Listing struct {
	Id                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CarModel           string             `json:"carModel" bson:"carModel"`
	Location           string             `json:"location" bson:"location"`
	DailyRentalPrice   float64            `json:"dailyRentalPrice" bson:"dailyRentalPrice"`
	PostDate           time.Time          `json:"postDate" bson:"postDate"`
	Publisher          Publisher          `json:"publisher" bson:"publisher"`
	Availability       Availability       `json:"availability" bson:"availability"`
	Booked             bool               `json:"booked" bson:"booked"`
	BookingCount       int                `json:"bookingCount" bson:"bookingCount"`
	Description        string             `json:"description,omitempty" bson:"description,omitempty"`
	ImageUrl           string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	RegistrationNumber string             `json:"registrationNumber,omitempty" bson:"registrationNumber,omitempty"`
	Features           []string           `json:"features,omitempty" bson:"features,omitempty"`
}

// ListingUpdate carries the publisher-editable fields of a listing. Nil fields
// are left untouched.
type ListingUpdate struct {
	CarModel           *string    `json:"carModel"`
	Location           *string    `json:"location"`
	DailyRentalPrice   *float64   `json:"dailyRentalPrice"`
	Publisher          *Publisher `json:"publisher"`
	Description        *string    `json:"description"`
	ImageUrl           *string    `json:"imageUrl"`
	RegistrationNumber *string    `json:"registrationNumber"`
	Features           *[]string  `json:"features"`
}

type UpsertResult struct {
	Matched    int64  `json:"matchedCount"`
	Modified   int64  `json:"modifiedCount"`
	UpsertedId string `json:"upsertedId,omitempty"`
}
