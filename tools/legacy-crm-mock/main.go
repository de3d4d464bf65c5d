package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// A simple struct to capture the incoming event data
type LeadAssignedEvent struct {
	LeadID     string    `json:"leadId"`
	LeadName   string    `json:"leadName"`
	EmployeeID string    `json:"employeeId"`
	Trigger    string    `json:"trigger"`
	AssignedAt time.Time `json:"assignedAt"`
}

func assignmentHandler(w http.ResponseWriter, r *http.Request) {
	var event LeadAssignedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	log.Printf("Received assignment: lead %s (%s) -> employee %s via %s", event.LeadID, event.LeadName, event.EmployeeID, event.Trigger)
	w.WriteHeader(http.StatusOK)
}

func main() {
	http.HandleFunc("/", assignmentHandler)
	log.Println("Legacy CRM mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
