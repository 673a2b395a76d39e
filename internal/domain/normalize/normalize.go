// Package normalize holds the pure value normalizers applied before persistence.
package normalize

import (
	"strings"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
)

// Lower trims and lower-cases s.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Code trims and upper-cases identifiers such as item codes and plates.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Text trims surrounding whitespace and collapses inner runs of spaces.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func Item(in models.InventoryItem) models.InventoryItem {
	in.ItemCode = Code(in.ItemCode)
	in.Description = Text(in.Description)
	in.Type = models.ItemType(Lower(string(in.Type)))
	in.UnitOfMeasure = Lower(in.UnitOfMeasure)
	in.Status = models.ItemStatus(Lower(string(in.Status)))
	if in.Type == "" {
		in.Type = models.ItemPhysical
	}
	if in.Status == "" {
		in.Status = models.ItemActive
	}
	return in
}

func Customer(in models.Customer) models.Customer {
	in.Name = Text(in.Name)
	in.Email = Lower(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = Text(in.Address)
	return in
}

func Category(in models.InventoryCategory) models.InventoryCategory {
	in.Name = Text(in.Name)
	in.Description = Text(in.Description)
	in.Status = recordStatus(in.Status)
	return in
}

func Supplier(in models.Supplier) models.Supplier {
	in.Name = Text(in.Name)
	in.ContactPerson = Text(in.ContactPerson)
	in.Email = Lower(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = Text(in.Address)
	in.Status = recordStatus(in.Status)
	return in
}

func TaxRate(in models.TaxRate) models.TaxRate {
	in.Name = Text(in.Name)
	in.Status = recordStatus(in.Status)
	return in
}

func Vehicle(in models.Vehicle) models.Vehicle {
	in.RegistrationNumber = strings.ReplaceAll(Code(in.RegistrationNumber), " ", "")
	in.Make = Text(in.Make)
	in.Model = Text(in.Model)
	in.Status = recordStatus(in.Status)
	return in
}

func Insurance(in models.Insurance) models.Insurance {
	in.Provider = Text(in.Provider)
	in.PolicyNumber = Code(in.PolicyNumber)
	return in
}

func RoadWorth(in models.RoadWorth) models.RoadWorth {
	in.CertificateNumber = Code(in.CertificateNumber)
	return in
}

func DriverLog(in models.VehicleDriverLog) models.VehicleDriverLog {
	in.Purpose = Text(in.Purpose)
	return in
}

func Employee(in models.Employee) models.Employee {
	in.EmployeeNumber = Code(in.EmployeeNumber)
	in.FirstName = Text(in.FirstName)
	in.LastName = Text(in.LastName)
	in.Email = Lower(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Department = Lower(in.Department)
	in.Position = Lower(in.Position)
	in.Status = recordStatus(in.Status)
	return in
}

func recordStatus(s models.RecordStatus) models.RecordStatus {
	s = models.RecordStatus(Lower(string(s)))
	if s == "" {
		return models.StatusActive
	}
	return s
}
