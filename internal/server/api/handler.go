// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package api holds the HTTP handlers for the self-service and admin
// surfaces. Handlers translate requests into engine operations and map
// the error taxonomy onto status codes; they hold no domain logic.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/campaign"
	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/export"
	"github.com/quixsi/muster/internal/model"
	"github.com/quixsi/muster/internal/notify"
	"github.com/quixsi/muster/internal/parser/form"
	"github.com/quixsi/muster/internal/registry"
	"github.com/quixsi/muster/internal/segment"
	"github.com/quixsi/muster/internal/ticket"
)

func NewHandler(
	reg *registry.Service,
	ledger *ticket.Ledger,
	filter *segment.Filter,
	dispatcher *campaign.Dispatcher,
	renderer ticket.Renderer,
	notifier notify.Notifier,
	members db.MemberStore,
	tickets db.TicketStore,
	campaigns db.CampaignStore,
	events db.EventStore,
) *Handler {
	return &Handler{
		registry:   reg,
		ledger:     ledger,
		filter:     filter,
		dispatcher: dispatcher,
		renderer:   renderer,
		notifier:   notifier,
		members:    members,
		tickets:    tickets,
		campaigns:  campaigns,
		events:     events,
		logger:     slog.Default().WithGroup("api"),
	}
}

type Handler struct {
	registry   *registry.Service
	ledger     *ticket.Ledger
	filter     *segment.Filter
	dispatcher *campaign.Dispatcher
	renderer   ticket.Renderer
	notifier   notify.Notifier
	members    db.MemberStore
	tickets    db.TicketStore
	campaigns  db.CampaignStore
	events     db.EventStore
	logger     *slog.Logger
}

// fail maps the engine error taxonomy onto HTTP status codes. ErrNotFound
// always renders the same body regardless of which lookup failed.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "not found"})
	case errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"code": "INVALID_TRANSITION", "message": err.Error()})
	case errors.Is(err, model.ErrMissingReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "MISSING_REASON", "message": err.Error()})
	case errors.Is(err, model.ErrNotEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "NOT_ELIGIBLE", "message": err.Error()})
	case errors.Is(err, model.ErrNotAttending):
		c.JSON(http.StatusConflict, gin.H{"code": "NOT_ATTENDING", "message": err.Error()})
	case errors.Is(err, model.ErrNoTicket):
		c.JSON(http.StatusConflict, gin.H{"code": "NO_TICKET", "message": err.Error()})
	case errors.Is(err, model.ErrUndeliverable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "UNDELIVERABLE", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "message": "internal error"})
	}
}

func operator(c *gin.Context) string {
	if user, ok := c.Get(gin.AuthUserKey); ok {
		if name, ok := user.(string); ok {
			return name
		}
	}
	return "unknown"
}

// memberView is the self-service projection of a registration record.
// Tokens, audit entries and other members' data never show up here.
type memberView struct {
	FirstName            string             `json:"firstname"`
	LastName             string             `json:"lastname"`
	Stage                string             `json:"stage"`
	Region               string             `json:"region"`
	Preferences          *model.Preferences `json:"preferences,omitempty"`
	AssignedVenue        string             `json:"assigned_venue,omitempty"`
	SessionAt            *time.Time         `json:"session_at,omitempty"`
	Attendance           string             `json:"attendance"`
	SpecialVoteEligible  bool               `json:"special_vote_eligible"`
	SpecialVoteRationale string             `json:"special_vote_rationale,omitempty"`
	SpecialVoteRequested bool               `json:"special_vote_requested"`
	SpecialVoteStatus    string             `json:"special_vote_status"`
	TicketIssued         bool               `json:"ticket_issued"`
	CheckedIn            bool               `json:"checked_in"`
}

func viewOf(m *model.Member) memberView {
	return memberView{
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Stage:                m.Stage.String(),
		Region:               m.Region.String(),
		Preferences:          m.Preferences,
		AssignedVenue:        m.AssignedVenue,
		SessionAt:            m.SessionAt,
		Attendance:           m.Attendance.String(),
		SpecialVoteEligible:  m.SpecialVoteEligible,
		SpecialVoteRationale: m.SpecialVoteRationale,
		SpecialVoteRequested: m.SpecialVoteRequested,
		SpecialVoteStatus:    m.SpecialVoteStatus.String(),
		TicketIssued:         m.TicketIssued,
		CheckedIn:            m.CheckedIn,
	}
}

func (h *Handler) token(c *gin.Context) (uuid.UUID, bool) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		fail(c, model.ErrNotFound)
		return uuid.Nil, false
	}
	return token, true
}

func (h *Handler) memberID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, model.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// State renders the member's own registration state.
func (h *Handler) State(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.State")
	defer span.End()

	token, ok := h.token(c)
	if !ok {
		return
	}
	member, err := h.registry.GetByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(member))
}

type preferenceForm struct {
	Intent     string   `form:"intent"`
	VenuePrefs []string `form:"venue_prefs"`
	TimePrefs  []string `form:"time_prefs"`
	Comments   string   `form:"comments"`
}

func (h *Handler) SubmitPreference(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.SubmitPreference")
	defer span.End()

	token, ok := h.token(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}
	var input preferenceForm
	if err := form.Unmarshal(c.Request.PostForm, &input); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}

	member, err := h.registry.SubmitPreference(ctx, token, &model.Preferences{
		Intent:     model.ParseAttendance(input.Intent),
		VenuePrefs: input.VenuePrefs,
		TimePrefs:  input.TimePrefs,
		Comments:   input.Comments,
	})
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(member))
}

type attendanceForm struct {
	Attending bool   `form:"attending"`
	Reason    string `form:"reason"`
	Detail    string `form:"detail"`
}

func (h *Handler) ConfirmAttendance(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ConfirmAttendance")
	defer span.End()

	token, ok := h.token(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}
	var input attendanceForm
	if err := form.Unmarshal(c.Request.PostForm, &input); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}

	member, err := h.registry.ConfirmAttendance(ctx, token, input.Attending,
		model.ParseAbsenceReason(input.Reason), input.Detail)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(member))
}

type specialVoteForm struct {
	Wants  bool   `form:"wants"`
	Reason string `form:"reason"`
}

func (h *Handler) RequestSpecialVote(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.RequestSpecialVote")
	defer span.End()

	token, ok := h.token(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}
	var input specialVoteForm
	if err := form.Unmarshal(c.Request.PostForm, &input); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": "could not parse form"})
		return
	}

	member, err := h.registry.RequestSpecialVote(ctx, token, input.Wants, input.Reason)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(member))
}

func (h *Handler) ListMembers(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ListMembers")
	defer span.End()

	criteria := model.Criteria{Search: c.Query("search")}
	if raw := c.Query("stage"); raw != "" {
		criteria.Stages = []model.Stage{model.ParseStage(raw)}
	}
	if raw := c.Query("region"); raw != "" {
		criteria.Regions = []model.Region{model.ParseRegion(raw)}
	}

	members, err := h.filter.Select(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(members), "members": members})
}

type inviteRequest struct {
	EventID          uuid.UUID `json:"event_id"`
	MembershipNumber string    `json:"membership_number"`
	FirstName        string    `json:"firstname"`
	LastName         string    `json:"lastname"`
	Email            string    `json:"email"`
	Mobile           string    `json:"mobile"`
	Region           string    `json:"region"`
	Industry         string    `json:"industry"`
	SubIndustry      string    `json:"sub_industry"`
}

func (h *Handler) InviteMember(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.InviteMember")
	defer span.End()

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	member, err := h.registry.Invite(ctx, &model.Member{
		EventID:          req.EventID,
		MembershipNumber: req.MembershipNumber,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Mobile:           req.Mobile,
		Region:           model.ParseRegion(req.Region),
		Industry:         req.Industry,
		SubIndustry:      req.SubIndustry,
	})
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *Handler) PreviewSegment(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.PreviewSegment")
	defer span.End()

	var criteria model.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse criteria"})
		return
	}

	members, err := h.filter.Select(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(members), "members": members})
}

type assignVenueRequest struct {
	Venue     string    `json:"venue"`
	SessionAt time.Time `json:"session_at"`
}

func (h *Handler) AssignVenue(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.AssignVenue")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req assignVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	member, err := h.registry.AssignVenue(ctx, id, req.Venue, req.SessionAt, operator(c))
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) IssueTicket(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.IssueTicket")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	result, err := h.ledger.Issue(ctx, id, operator(c))
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	url, err := h.renderer.TicketURL(ctx, result.Ticket.Reference)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	status := "issued"
	if result.AlreadyIssued {
		status = "ticket_already_issued"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "ticket": result.Ticket, "url": url})
}

// ResendTicket layers a delivery on the existing ticket; it never mints a
// new one.
func (h *Handler) ResendTicket(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ResendTicket")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	member, err := h.members.GetMemberByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		fail(c, model.ErrNotFound)
		return
	}
	t, err := h.ledger.Ticket(ctx, id)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	url, err := h.renderer.TicketURL(ctx, t.Reference)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	msg := notify.Message{
		Subject: "Your meeting ticket",
		Body:    "Your ticket: " + url,
	}
	switch {
	case member.HasEmail():
		msg.Channel = model.ChannelEmail
		msg.Recipient = member.Email
	case member.HasMobile():
		msg.Channel = model.ChannelSMS
		msg.Recipient = member.Mobile
	default:
		fail(c, model.ErrUndeliverable)
		return
	}
	if err := h.notifier.Send(ctx, msg); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadGateway, gin.H{"code": "TRANSPORT_FAILURE", "message": "delivery failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resent", "channel": msg.Channel, "url": url})
}

type checkInRequest struct {
	Method string `json:"method"`
	Venue  string `json:"venue"`
}

func (h *Handler) CheckIn(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.CheckIn")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	result, err := h.ledger.CheckIn(ctx, id, model.ParseCheckInMethod(req.Method), operator(c), req.Venue)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	status := "checked_in"
	if result.AlreadyCheckedIn {
		status = "already_checked_in"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "check_in": result.First})
}

type decideSpecialVoteRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) DecideSpecialVote(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.DecideSpecialVote")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req decideSpecialVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	member, err := h.registry.DecideSpecialVote(ctx, id, req.Approve, operator(c))
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type overrideStageRequest struct {
	Stage         string `json:"stage"`
	Justification string `json:"justification"`
}

func (h *Handler) OverrideStage(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.OverrideStage")
	defer span.End()

	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req overrideStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	member, err := h.registry.OverrideStage(ctx, id, model.ParseStage(req.Stage), operator(c), req.Justification)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type createCampaignRequest struct {
	EventID  uuid.UUID      `json:"event_id"`
	Name     string         `json:"name"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	Criteria model.Criteria `json:"criteria"`
}

// CreateCampaign previews the segment with the same evaluator the preview
// endpoint uses and dispatches to exactly that recipient set.
func (h *Handler) CreateCampaign(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.CreateCampaign")
	defer span.End()

	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}

	recipients, err := h.filter.Select(ctx, req.Criteria)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	camp := &model.Campaign{
		EventID:   req.EventID,
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		Criteria:  req.Criteria,
		CreatedBy: operator(c),
	}
	if _, err := h.campaigns.CreateCampaign(ctx, camp); err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	report, err := h.dispatcher.Dispatch(ctx, camp, recipients)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": camp, "report": report})
}

func (h *Handler) CampaignReport(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.CampaignReport")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, model.ErrNotFound)
		return
	}
	camp, err := h.campaigns.GetCampaignByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		fail(c, model.ErrNotFound)
		return
	}
	report, jobs, err := h.dispatcher.Report(ctx, id)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": camp, "report": report, "jobs": jobs})
}

type createEventRequest struct {
	Name   string         `json:"name"`
	Date   time.Time      `json:"date"`
	Venues []*model.Venue `json:"venues"`
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.CreateEvent")
	defer span.End()

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "could not parse request"})
		return
	}
	event := &model.Event{Name: req.Name, Date: req.Date, Venues: req.Venues}
	if _, err := h.events.CreateEvent(ctx, event); err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) ListEvents(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ListEvents")
	defer span.End()

	events, err := h.events.ListEvents(ctx)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(events), "events": events})
}

// Export hands flattened records to the read-only reporting consumer.
func (h *Handler) Export(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.Export")
	defer span.End()

	members, err := h.members.ListMembers(ctx)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	memberRows, err := export.Members(members)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	tickets, err := h.tickets.ListTickets(ctx)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	ticketRows, err := export.Tickets(tickets)
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": memberRows, "tickets": ticketRows})
}
