package handlers

import (
	"time"

	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/sanitize"
)

// All timestamps on the wire are RFC 3339.

type locationPayload struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type newEventPayload struct {
	Title             string           `json:"title" validate:"required,min=3,max=120"`
	Annotation        string           `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string           `json:"description" validate:"required,min=20,max=7000"`
	Category          int64            `json:"category" validate:"required,gt=0"`
	EventDate         time.Time        `json:"eventDate" validate:"required"`
	Location          *locationPayload `json:"location" validate:"required"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int32           `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool            `json:"requestModeration"`
}

func (p newEventPayload) toDraft() events.NewEvent {
	return events.NewEvent{
		Title:             sanitize.Text(p.Title),
		Annotation:        sanitize.Text(p.Annotation),
		Description:       sanitize.Rich(p.Description),
		CategoryID:        p.Category,
		EventDate:         p.EventDate,
		Lat:               p.Location.Lat,
		Lon:               p.Location.Lon,
		Paid:              p.Paid,
		ParticipantLimit:  p.ParticipantLimit,
		RequestModeration: p.RequestModeration,
	}
}

type updateEventPayload struct {
	Title             *string          `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string          `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string          `json:"description" validate:"omitempty,min=20,max=7000"`
	Category          *int64           `json:"category" validate:"omitempty,gt=0"`
	EventDate         *time.Time       `json:"eventDate"`
	Location          *locationPayload `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int32           `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool            `json:"requestModeration"`
	StateAction       string           `json:"stateAction" validate:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW PUBLISH_EVENT REJECT_EVENT"`
}

func (p updateEventPayload) toPatch() events.Patch {
	patch := events.Patch{
		Title:             sanitizedPtr(p.Title, sanitize.Text),
		Annotation:        sanitizedPtr(p.Annotation, sanitize.Text),
		Description:       sanitizedPtr(p.Description, sanitize.Rich),
		CategoryID:        p.Category,
		EventDate:         p.EventDate,
		Paid:              p.Paid,
		ParticipantLimit:  p.ParticipantLimit,
		RequestModeration: p.RequestModeration,
		StateAction:       events.StateAction(p.StateAction),
	}
	if p.Location != nil {
		patch.Location = &events.LatLon{Lat: p.Location.Lat, Lon: p.Location.Lon}
	}
	return patch
}

func sanitizedPtr(value *string, clean func(string) string) *string {
	if value == nil {
		return nil
	}
	cleaned := clean(*value)
	return &cleaned
}

type eventResponse struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	Annotation        string          `json:"annotation"`
	Description       string          `json:"description"`
	Category          int64           `json:"category"`
	Initiator         int64           `json:"initiator"`
	Location          locationPayload `json:"location"`
	EventDate         time.Time       `json:"eventDate"`
	CreatedOn         time.Time       `json:"createdOn"`
	PublishedOn       *time.Time      `json:"publishedOn,omitempty"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int32           `json:"participantLimit"`
	RequestModeration bool            `json:"requestModeration"`
	State             string          `json:"state"`
	Views             int64           `json:"views"`
	ConfirmedRequests int64           `json:"confirmedRequests"`
}

func eventFromDomain(event *events.Event) eventResponse {
	return eventResponse{
		ID:                event.ID,
		Title:             event.Title,
		Annotation:        event.Annotation,
		Description:       event.Description,
		Category:          event.CategoryID,
		Initiator:         event.InitiatorID,
		Location:          locationPayload{Lat: event.Location.Lat, Lon: event.Location.Lon},
		EventDate:         event.EventDate,
		CreatedOn:         event.CreatedOn,
		PublishedOn:       event.PublishedOn,
		Paid:              event.Paid,
		ParticipantLimit:  event.ParticipantLimit,
		RequestModeration: event.RequestModeration,
		State:             string(event.State),
	}
}

func eventFromStats(item events.WithStats) eventResponse {
	response := eventFromDomain(&item.Event)
	response.Views = item.Views
	response.ConfirmedRequests = item.ConfirmedRequests
	return response
}

func eventsFromStats(list []events.WithStats) []eventResponse {
	responses := make([]eventResponse, 0, len(list))
	for _, item := range list {
		responses = append(responses, eventFromStats(item))
	}
	return responses
}

type requestResponse struct {
	ID        int64     `json:"id"`
	Event     int64     `json:"event"`
	Requester int64     `json:"requester"`
	Created   time.Time `json:"created"`
	Status    string    `json:"status"`
}

func requestFromDomain(request *requests.Request) requestResponse {
	return requestResponse{
		ID:        request.ID,
		Event:     request.EventID,
		Requester: request.RequesterID,
		Created:   request.Created,
		Status:    string(request.Status),
	}
}

func requestsFromDomain(list []requests.Request) []requestResponse {
	responses := make([]requestResponse, 0, len(list))
	for i := range list {
		responses = append(responses, requestFromDomain(&list[i]))
	}
	return responses
}

type statusUpdatePayload struct {
	RequestIDs []int64 `json:"requestIds" validate:"required,min=1"`
	Status     string  `json:"status" validate:"required"`
}

type statusUpdateResponse struct {
	ConfirmedRequests []requestResponse `json:"confirmedRequests"`
	RejectedRequests  []requestResponse `json:"rejectedRequests"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type newUserPayload struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type newCategoryPayload struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type newCompilationPayload struct {
	Title  string  `json:"title" validate:"required,min=1,max=50"`
	Pinned *bool   `json:"pinned"`
	Events []int64 `json:"events"`
}

type updateCompilationPayload struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=50"`
	Pinned *bool   `json:"pinned"`
	Events []int64 `json:"events"`
}

type compilationResponse struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Pinned bool            `json:"pinned"`
	Events []eventResponse `json:"events"`
}

func compilationFromDomain(item *compilations.WithEvents) compilationResponse {
	return compilationResponse{
		ID:     item.ID,
		Title:  item.Title,
		Pinned: item.Pinned,
		Events: eventsFromStats(item.Events),
	}
}

type newCommentPayload struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

type commentResponse struct {
	ID      int64     `json:"id"`
	Event   int64     `json:"event"`
	Author  int64     `json:"author"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

type hitPayload struct {
	App       string    `json:"app" validate:"required"`
	URI       string    `json:"uri" validate:"required"`
	IP        string    `json:"ip" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

type viewStatsResponse struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
