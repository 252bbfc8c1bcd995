package model

import (
	"time"

	"github.com/google/uuid"
)

// RevenueMetric aggregates completed work orders for a single day.
type RevenueMetric struct {
	Date         string  `json:"date"`
	TotalRevenue float64 `json:"totalRevenue"`
	PartsRevenue float64 `json:"partsRevenue"`
	LaborRevenue float64 `json:"laborRevenue"`
	OrderCount   int     `json:"orderCount"`
}

type TechnicianProductivity struct {
	TechnicianID    uuid.UUID `json:"technicianId"`
	TechnicianName  string    `json:"technicianName"`
	TotalOrders     int       `json:"totalOrders"`
	CompletedOrders int       `json:"completedOrders"`
	TotalRevenue    float64   `json:"totalRevenue"`
}

type WorkOrderFunnel struct {
	WeekStart      string `json:"weekStart"`
	DraftCount     int    `json:"draftCount"`
	SubmittedCount int    `json:"submittedCount"`
	ApprovedCount  int    `json:"approvedCount"`
	CompletedCount int    `json:"completedCount"`
}

type TopCustomer struct {
	CustomerID   uuid.UUID `json:"customerId"`
	CustomerName string    `json:"customerName"`
	TotalOrders  int       `json:"totalOrders"`
	TotalSpent   float64   `json:"totalSpent"`
}

// RevenueReport is the shape handed to the excel writer.
type RevenueReport struct {
	DealershipName string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Metrics        []RevenueMetric
}
