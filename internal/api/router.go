package api

import (
	"github.com/gorilla/mux"

	"github.com/daymark/daymark/internal/api/recovery"
	"github.com/daymark/daymark/internal/services"
)

// NewRouter wires all API routes to their handlers.
func NewRouter(events *services.EventService, reminders *services.ReminderService) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Events
	event := NewEventHandler(events)
	root.HandleFunc("/api/events", event.CreateEvent).Methods("POST")
	root.HandleFunc("/api/events", event.ListEvents).Methods("GET")
	root.HandleFunc("/api/events/{eventId}", event.GetEvent).Methods("GET")
	root.HandleFunc("/api/events/{eventId}", event.UpdateEvent).Methods("PUT")
	root.HandleFunc("/api/events/{eventId}", event.DeleteEvent).Methods("DELETE")
	root.HandleFunc("/api/events/{eventId}/milestones", event.ListMilestones).Methods("GET")

	// Reminders
	reminder := NewReminderHandler(reminders)
	root.HandleFunc("/api/events/{eventId}/reminders", reminder.CreateReminder).Methods("POST")
	root.HandleFunc("/api/events/{eventId}/reminders", reminder.ListReminders).Methods("GET")
	root.HandleFunc("/api/events/{eventId}/reminders/{reminderId}", reminder.GetReminder).Methods("GET")
	root.HandleFunc("/api/events/{eventId}/reminders/{reminderId}", reminder.UpdateReminder).Methods("PUT")
	root.HandleFunc("/api/events/{eventId}/reminders/{reminderId}", reminder.DeleteReminder).Methods("DELETE")

	// Elapsed formatter probe
	elapsedHandler := NewElapsedHandler()
	root.HandleFunc("/api/elapsed", elapsedHandler.Elapsed).Methods("GET")

	// Health
	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}
