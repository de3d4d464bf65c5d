package messaging

import "time"

// LeadAssignedEvent is the JSON payload sent via SQS whenever the assignment
// engine gives a lead an owner. Consumed by the CRM sync worker.
type LeadAssignedEvent struct {
	LeadID     string    `json:"leadId"`
	LeadName   string    `json:"leadName"`
	EmployeeID string    `json:"employeeId"`
	Trigger    string    `json:"trigger"`
	AssignedAt time.Time `json:"assignedAt"`
}

// AssignmentEmailEvent is the JSON payload sent via SQS for the email queue.
type AssignmentEmailEvent struct {
	LeadID        string    `json:"leadId"`
	LeadName      string    `json:"leadName"`
	EmployeeID    string    `json:"employeeId"`
	EmployeeEmail string    `json:"employeeEmail"`
	OccurredAt    time.Time `json:"occurredAt"`
}
