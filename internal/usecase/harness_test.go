package usecase_test

import (
	"context"
	"testing"
	"time"

	"fabrication-workflow/config"
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/internal/testutil"
	"fabrication-workflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Monday 19 October 2026, 08:00 UTC
var testNow = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

const (
	tuesday   = "2026-10-20"
	wednesday = "2026-10-21"
	thursday  = "2026-10-22"
	saturday  = "2026-10-24"
)

type harness struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	clock    *testutil.Clock
	audit    *testutil.AuditSpy
	notifier *testutil.NotifierSpy

	appointments usecase.AppointmentUsecase
	intakes      usecase.VisitIntakeUsecase
	projects     usecase.ProjectUsecase
	blueprints   usecase.BlueprintUsecase
	payments     usecase.PaymentUsecase
	fabrication  usecase.FabricationUsecase

	customer entity.Actor
	agent    entity.Actor
	staff    entity.Actor
	engineer entity.Actor
	admin    entity.Actor
}

type harnessOption func(*usecase.AppointmentSettings, *[]string)

func withHolidays(days ...string) harnessOption {
	return func(_ *usecase.AppointmentSettings, holidays *[]string) {
		*holidays = append(*holidays, days...)
	}
}

func withOfficeCapacity(n int) harnessOption {
	return func(s *usecase.AppointmentSettings, _ *[]string) {
		s.OfficeSlotCapacity = n
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	clock := testutil.NewClock(testNow)

	settings := usecase.AppointmentSettings{
		OfficeSlotCapacity: 3,
		MaxReschedules:     2,
		Office:             entity.Coordinates{Latitude: 14.5995, Longitude: 120.9842},
		FeeTimeout:         time.Second,
	}
	var holidays []string
	for _, opt := range opts {
		opt(&settings, &holidays)
	}

	userRepo := repository.NewUserRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	intakeRepo := repository.NewVisitIntakeRepository()
	projectRepo := repository.NewProjectRepository()

	reservation := service.NewReservationService(log, repository.NewReservationHoldRepository(), 5*time.Minute)
	reservation.SetClock(clock.Now)
	availability := service.NewAvailabilityService(db, log, userRepo, holidays)
	fees := service.NewRouteFeeService(nil, log, config.FeeConfig{
		BaseFee:  decimal.NewFromInt(500),
		PerKmFee: decimal.NewFromInt(25),
	})

	audit := &testutil.AuditSpy{}
	notifier := &testutil.NotifierSpy{}

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		clock:    clock,
		audit:    audit,
		notifier: notifier,
		customer: testutil.ActorFor(testutil.CreateUser(t, db, entity.RoleCustomer)),
		agent:    testutil.ActorFor(testutil.CreateUser(t, db, entity.RoleAgent)),
		staff:    testutil.ActorFor(testutil.CreateUser(t, db, entity.RoleStaff)),
		engineer: testutil.ActorFor(testutil.CreateUser(t, db, entity.RoleEngineer)),
		admin:    testutil.ActorFor(testutil.CreateUser(t, db, entity.RoleAdmin)),
	}

	h.appointments = usecase.NewAppointmentUsecase(db, log, appointmentRepo, intakeRepo, projectRepo, userRepo,
		reservation, availability, fees, audit, notifier, settings)
	h.intakes = usecase.NewVisitIntakeUsecase(db, log, intakeRepo, appointmentRepo, projectRepo, reservation, audit, notifier)
	h.projects = usecase.NewProjectUsecase(db, log, projectRepo, appointmentRepo, intakeRepo, userRepo, reservation, audit, notifier)
	h.blueprints = usecase.NewBlueprintUsecase(db, log, repository.NewBlueprintRepository(), projectRepo, appointmentRepo, intakeRepo,
		reservation, audit, notifier, 3)
	h.payments = usecase.NewPaymentUsecase(db, log, repository.NewPaymentPlanRepository(), repository.NewPaymentRepository(),
		repository.NewReceiptSequenceRepository(), projectRepo, appointmentRepo, intakeRepo, reservation, audit, notifier, "RCP")
	h.fabrication = usecase.NewFabricationUsecase(db, log, repository.NewFabricationUpdateRepository(), projectRepo,
		appointmentRepo, intakeRepo, reservation, audit, notifier)

	return h
}

func (h *harness) newCustomer() entity.Actor {
	return testutil.ActorFor(testutil.CreateUser(h.t, h.db, entity.RoleCustomer))
}

func (h *harness) newAgent() entity.Actor {
	return testutil.ActorFor(testutil.CreateUser(h.t, h.db, entity.RoleAgent))
}

func (h *harness) newStaff() entity.Actor {
	return testutil.ActorFor(testutil.CreateUser(h.t, h.db, entity.RoleStaff))
}

func onSiteRequest(date, slot string) *dto.CreateAppointmentRequest {
	lat, lon := 14.5547, 121.0244
	return &dto.CreateAppointmentRequest{
		Type:      string(entity.AppointmentTypeOnSite),
		Date:      date,
		SlotCode:  slot,
		Address:   "12 Ayala Ave",
		Latitude:  &lat,
		Longitude: &lon,
	}
}

func officeRequest(date, slot string) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		Type:     string(entity.AppointmentTypeOffice),
		Date:     date,
		SlotCode: slot,
	}
}

// confirmedVisit books and confirms a site visit for the harness customer and staff
func (h *harness) confirmedVisit() *dto.AppointmentResponse {
	h.t.Helper()
	appt, err := h.appointments.Request(h.ctx, h.customer, onSiteRequest(tuesday, "09:00"))
	require.NoError(h.t, err)

	staffID := h.staff.UserID
	confirmed, err := h.appointments.Confirm(h.ctx, h.agent, appt.ID, &dto.ConfirmAppointmentRequest{StaffID: &staffID})
	require.NoError(h.t, err)
	return confirmed
}

// submittedProject drives a visit through intake submission
func (h *harness) submittedProject() uuid.UUID {
	h.t.Helper()
	appt := h.confirmedVisit()

	intake, err := h.intakes.GetByAppointment(h.ctx, h.staff, appt.ID)
	require.NoError(h.t, err)

	requirements := "Steel gate with sliding rail\nPowder coated black"
	measurements := "4.2m x 1.8m"
	_, err = h.intakes.Update(h.ctx, h.staff, intake.ID, &dto.UpdateVisitIntakeRequest{
		Requirements: &requirements,
		Measurements: &measurements,
	})
	require.NoError(h.t, err)

	resp, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(h.t, err)
	require.NotNil(h.t, resp.ProjectID)
	return *resp.ProjectID
}

// designProject puts a submitted project in the design phase with the harness engineer
func (h *harness) designProject() uuid.UUID {
	h.t.Helper()
	projectID := h.submittedProject()
	_, err := h.projects.AssignStaff(h.ctx, h.admin, projectID, &dto.AssignStaffRequest{
		UserID: h.engineer.UserID,
		Role:   entity.AssignmentRoleDesign,
	})
	require.NoError(h.t, err)
	return projectID
}

func blueprintUpload(cost int64) *dto.UploadBlueprintRequest {
	return &dto.UploadBlueprintRequest{
		DrawingKey:    "design/2026/10/" + uuid.NewString() + ".pdf",
		CostingKey:    "design/2026/10/" + uuid.NewString() + ".xlsx",
		EstimatedCost: decimal.NewFromInt(cost),
	}
}

// approvedProject uploads a design and has the customer approve it
func (h *harness) approvedProject() uuid.UUID {
	h.t.Helper()
	projectID := h.designProject()
	bp, err := h.blueprints.UploadInitial(h.ctx, h.engineer, projectID, blueprintUpload(10000))
	require.NoError(h.t, err)
	resp, err := h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartBoth})
	require.NoError(h.t, err)
	require.Equal(h.t, string(entity.ProjectStatusApproved), resp.ProjectStatus)
	return projectID
}

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

// billedProject creates a plan of total split by percentages on an approved project
func (h *harness) billedProject(total string, percentages ...string) (uuid.UUID, *dto.PaymentPlanResponse) {
	h.t.Helper()
	projectID := h.approvedProject()
	plan, err := h.payments.CreatePlan(h.ctx, h.agent, projectID, &dto.CreatePaymentPlanRequest{
		TotalAmount: decimal.RequireFromString(total),
		Percentages: decimals(percentages...),
	})
	require.NoError(h.t, err)
	return projectID, plan
}

func (h *harness) pay(projectID, stageID uuid.UUID, amount string) *dto.PaymentResponse {
	h.t.Helper()
	payment, err := h.payments.SubmitProof(h.ctx, h.customer, projectID, &dto.SubmitPaymentRequest{
		StageID: stageID,
		Method:  string(entity.PaymentMethodBankTransfer),
		Amount:  decimal.RequireFromString(amount),
	})
	require.NoError(h.t, err)
	return payment
}

// productionProject pays a single-stage plan in full
func (h *harness) productionProject() uuid.UUID {
	h.t.Helper()
	projectID, plan := h.billedProject("10000", "100")
	payment := h.pay(projectID, plan.Stages[0].ID, "10000")
	resp, err := h.payments.Verify(h.ctx, h.agent, payment.ID)
	require.NoError(h.t, err)
	require.Equal(h.t, string(entity.ProjectStatusProduction), resp.ProjectStatus)

	_, err = h.projects.AssignStaff(h.ctx, h.admin, projectID, &dto.AssignStaffRequest{
		UserID: h.staff.UserID,
		Role:   entity.AssignmentRoleProduction,
	})
	require.NoError(h.t, err)
	return projectID
}
