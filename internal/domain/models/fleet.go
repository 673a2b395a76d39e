package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a fleet asset.
type Vehicle struct {
	Base               `bson:",inline"`
	RegistrationNumber string       `bson:"registrationNumber" json:"registrationNumber"`
	Make               string       `bson:"make" json:"make"`
	Model              string       `bson:"model" json:"model"`
	Year               int          `bson:"year,omitempty" json:"year,omitempty"`
	Status             RecordStatus `bson:"status" json:"status"`
}

// Insurance is a policy covering a vehicle.
type Insurance struct {
	Base         `bson:",inline"`
	Vehicle      primitive.ObjectID `bson:"vehicle" json:"vehicle"`
	Provider     string             `bson:"provider" json:"provider"`
	PolicyNumber string             `bson:"policyNumber" json:"policyNumber"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	EndDate      time.Time          `bson:"endDate" json:"endDate"`
	Premium      float64            `bson:"premium" json:"premium"`
}

// RoadWorth is a road-worthiness certificate for a vehicle.
type RoadWorth struct {
	Base              `bson:",inline"`
	Vehicle           primitive.ObjectID `bson:"vehicle" json:"vehicle"`
	CertificateNumber string             `bson:"certificateNumber" json:"certificateNumber"`
	IssueDate         time.Time          `bson:"issueDate" json:"issueDate"`
	ExpiryDate        time.Time          `bson:"expiryDate" json:"expiryDate"`
}

// VehicleDriverLog records a driver's use of a vehicle.
type VehicleDriverLog struct {
	Base         `bson:",inline"`
	Vehicle      primitive.ObjectID `bson:"vehicle" json:"vehicle"`
	Driver       primitive.ObjectID `bson:"driver" json:"driver"`
	CheckOut     time.Time          `bson:"checkOut" json:"checkOut"`
	CheckIn      *time.Time         `bson:"checkIn,omitempty" json:"checkIn,omitempty"`
	StartMileage int                `bson:"startMileage" json:"startMileage"`
	EndMileage   int                `bson:"endMileage,omitempty" json:"endMileage,omitempty"`
	Purpose      string             `bson:"purpose,omitempty" json:"purpose,omitempty"`
}

// Employee is a staff member; drivers reference employees.
type Employee struct {
	Base           `bson:",inline"`
	EmployeeNumber string       `bson:"employeeNumber" json:"employeeNumber"`
	FirstName      string       `bson:"firstName" json:"firstName"`
	LastName       string       `bson:"lastName" json:"lastName"`
	Email          string       `bson:"email" json:"email"`
	Phone          string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Department     string       `bson:"department,omitempty" json:"department,omitempty"`
	Position       string       `bson:"position,omitempty" json:"position,omitempty"`
	HireDate       *time.Time   `bson:"hireDate,omitempty" json:"hireDate,omitempty"`
	Status         RecordStatus `bson:"status" json:"status"`
}
