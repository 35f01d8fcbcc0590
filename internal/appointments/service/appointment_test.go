package service

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	appterrors "medibites/internal/appointments/errors"
	"medibites/internal/appointments/validator"
	doctorserrors "medibites/internal/doctors/errors"
	doctorservice "medibites/internal/doctors/service"
	"medibites/internal/otp"
	slotserrors "medibites/internal/slots/errors"
	slotservice "medibites/internal/slots/service"
	"medibites/pkg/config"
	mongotx "medibites/pkg/db/mongo"
	apperrors "medibites/pkg/errors"
	"medibites/pkg/kafka"
	"medibites/pkg/logger"
	"medibites/pkg/metrics"
	"medibites/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// memStore serialises transactions and restores its state when one fails,
// standing in for a Mongo replica set.
type memStore struct {
	mu           sync.Mutex
	slots        map[model.SlotKey]*model.TimeSlot
	appointments map[string]*model.Appointment
	doctors      map[string]*model.Doctor
	failInsert   error
}

func newMemStore() *memStore {
	return &memStore{
		slots:        map[model.SlotKey]*model.TimeSlot{},
		appointments: map[string]*model.Appointment{},
		doctors:      map[string]*model.Doctor{},
	}
}

func (m *memStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := make(map[model.SlotKey]*model.TimeSlot, len(m.slots))
	for k, v := range m.slots {
		copied := *v
		slots[k] = &copied
	}
	appointments := make(map[string]*model.Appointment, len(m.appointments))
	for k, v := range m.appointments {
		appointments[k] = v
	}

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		m.slots = slots
		m.appointments = appointments
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.StoreUnavailable("Transaction failed", err)
	}
	return nil
}

func (m *memStore) addSlot(doctorID, date, start string) model.SlotKey {
	key := model.SlotKey{DoctorID: doctorID, Date: date, StartTime: start}
	m.slots[key] = &model.TimeSlot{DoctorID: doctorID, Date: date, StartTime: start}
	return key
}

// slot repository; callers hold m.mu through ExecuteTransaction.
type memSlotRepository struct{ store *memStore }

func (r memSlotRepository) IsAvailable(_ context.Context, key model.SlotKey) (bool, error) {
	slot, ok := r.store.slots[key]
	return ok && !slot.IsBooked, nil
}

func (r memSlotRepository) Reserve(_ context.Context, key model.SlotKey, appointmentID string) (*model.TimeSlot, error) {
	slot, ok := r.store.slots[key]
	if !ok || slot.IsBooked {
		return nil, slotserrors.ErrSlotUnavailable
	}
	slot.IsBooked = true
	slot.AppointmentID = appointmentID
	return slot, nil
}

func (r memSlotRepository) FindByDoctorAndDate(_ context.Context, doctorID, date string, onlyFree bool) ([]*model.TimeSlot, error) {
	return nil, nil
}

type memDoctorRepository struct{ store *memStore }

func (r memDoctorRepository) FindByID(_ context.Context, id string) (*model.Doctor, error) {
	d, ok := r.store.doctors[id]
	if !ok {
		return nil, doctorserrors.ErrDoctorNotFound
	}
	return d, nil
}

func (r memDoctorRepository) FindBySpecialty(_ context.Context, specialty string) ([]*model.Doctor, error) {
	return nil, nil
}

func (r memDoctorRepository) Specialties(_ context.Context) ([]string, error) {
	return nil, nil
}

type memAppointmentRepository struct{ store *memStore }

func (r memAppointmentRepository) Insert(_ context.Context, appt *model.Appointment) error {
	if r.store.failInsert != nil {
		return r.store.failInsert
	}
	if _, exists := r.store.appointments[appt.ID]; exists {
		return appterrors.ErrDuplicate
	}
	r.store.appointments[appt.ID] = appt
	return nil
}

func (r memAppointmentRepository) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	appt, ok := r.store.appointments[id]
	if !ok {
		return nil, appterrors.ErrNotFound
	}
	return appt, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func feeOf(v float64) *float64 { return &v }

type fixture struct {
	store     *memStore
	svc       AppointmentService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{
		Log:                    log,
		ReadTimeout:            time.Second,
		WriteTimeout:           time.Second,
		DefaultConsultationFee: 100,
	}

	store := newMemStore()
	store.doctors["D123"] = &model.Doctor{
		ID:               "D123",
		Name:             "Dr. Meera Rao",
		Specialty:        "Cardiology",
		ConsultationFees: model.ConsultationFees{InPerson: feeOf(150)},
	}
	publisher := &recordingPublisher{}

	svc := NewAppointmentService(
		memAppointmentRepository{store},
		store,
		slotservice.NewSlotService(memSlotRepository{store}, cfg),
		doctorservice.NewDoctorService(memDoctorRepository{store}, cfg),
		otp.NewAuthority(bcrypt.MinCost),
		validator.NewAppointmentValidator(log),
		kafka.NewAppointmentEvents(publisher, "appointments-test", log),
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		cfg,
	)
	return &fixture{store: store, svc: svc, publisher: publisher}
}

var testPatient = model.PatientInfo{ID: "P1", Name: "Asha Verma", Email: "Asha@Example.com"}

func bookIntent(doctorID, date, start, end, consultationType string) *model.BookIntent {
	return &model.BookIntent{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Reason:    "chest pain",
		Type:      consultationType,
	}
}

func TestBook_PricesFromFeeTable(t *testing.T) {
	f := newFixture(t)
	key := f.store.addSlot("D123", "2024-06-01", "09:00")

	result, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", "in-person"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Cost != 150 {
		t.Errorf("expected cost 150, got %v", result.Cost)
	}
	if result.DoctorName != "Dr. Meera Rao" || result.Date != "2024-06-01" || result.Time != "09:00" {
		t.Errorf("unexpected result: %+v", result)
	}
	if !otp.ValidFormat(result.OTP) {
		t.Errorf("expected 6-digit OTP, got %q", result.OTP)
	}
	want := regexp.MustCompile(`^APT-20240601-` + regexp.QuoteMeta(result.AppointmentID[:6]) + `$`)
	if !want.MatchString(result.ConfirmationNumber) {
		t.Errorf("unexpected confirmation number %q", result.ConfirmationNumber)
	}

	appt := f.store.appointments[result.AppointmentID]
	if appt == nil {
		t.Fatal("appointment was not stored")
	}
	if appt.Status != model.AppointmentStatusPendingPayment || appt.IsPaid {
		t.Errorf("expected pending_payment and unpaid, got %s paid=%v", appt.Status, appt.IsPaid)
	}
	if appt.PatientEmail != "asha@example.com" {
		t.Errorf("expected normalized email, got %s", appt.PatientEmail)
	}
	if appt.TransactionID != "" {
		t.Error("transaction id must not be set before payment")
	}
	if bcrypt.CompareHashAndPassword([]byte(appt.OTPHash), []byte(result.OTP)) != nil {
		t.Error("stored OTP hash does not match issued OTP")
	}

	slot := f.store.slots[key]
	if !slot.IsBooked || slot.AppointmentID != result.AppointmentID {
		t.Errorf("slot not reserved for appointment: %+v", slot)
	}
}

func TestBook_DefaultFeeAndType(t *testing.T) {
	f := newFixture(t)
	f.store.addSlot("D123", "2024-06-01", "10:00")

	result, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "10:00", "10:30", "telemedicine"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cost != 100 {
		t.Errorf("expected default cost 100, got %v", result.Cost)
	}

	f.store.addSlot("D123", "2024-06-01", "11:00")
	result, err = f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "11:00", "11:30", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.store.appointments[result.AppointmentID].Type; got != model.ConsultationInPerson {
		t.Errorf("expected in-person default, got %s", got)
	}
}

func TestBook_SlotCrossingMidnight(t *testing.T) {
	f := newFixture(t)
	f.store.addSlot("D123", "2024-06-01", "23:45")

	result, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "23:45", "00:15", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	appt := f.store.appointments[result.AppointmentID]
	if appt.StartTime != "23:45" || appt.EndTime != "00:15" || appt.Date != "2024-06-01" {
		t.Errorf("unexpected appointment times: %s %s-%s", appt.Date, appt.StartTime, appt.EndTime)
	}
}

func TestBook_IncompleteIntentWritesNothing(t *testing.T) {
	f := newFixture(t)
	key := f.store.addSlot("D123", "2024-06-01", "09:00")

	_, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "9am", "", ""))
	if apperrors.KindOf(err) != apperrors.CodeIncompleteIntent {
		t.Fatalf("expected INCOMPLETE_INTENT, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if missing, _ := appErr.Details["missing"].([]string); len(missing) != 1 || missing[0] != "endTime" {
		t.Errorf("expected endTime to be reported missing, got %v", appErr.Details["missing"])
	}

	_, err = f.svc.Book(context.Background(), testPatient, nil)
	if apperrors.KindOf(err) != apperrors.CodeIncompleteIntent {
		t.Fatalf("expected INCOMPLETE_INTENT for nil intent, got %v", err)
	}

	if len(f.store.appointments) != 0 || f.store.slots[key].IsBooked {
		t.Error("incomplete intent must not write")
	}
}

func TestBook_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		patient model.PatientInfo
		intent  *model.BookIntent
	}{
		{"bad email", model.PatientInfo{ID: "P1", Email: "not-an-email"}, bookIntent("D123", "2024-06-01", "09:00", "09:30", "")},
		{"missing patient id", model.PatientInfo{Email: "a@b.com"}, bookIntent("D123", "2024-06-01", "09:00", "09:30", "")},
		{"bad date", testPatient, bookIntent("D123", "01/06/2024", "09:00", "09:30", "")},
		{"bad type", testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", "house-call")},
		{"end before start", testPatient, bookIntent("D123", "2024-06-01", "09:00", "08:30", "")},
		{"end equals start", testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:00", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(context.Background(), tt.patient, tt.intent)
			if apperrors.KindOf(err) != apperrors.CodeValidation {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestBook_SlotTaken(t *testing.T) {
	f := newFixture(t)
	f.store.addSlot("D123", "2024-06-01", "09:00")

	if _, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", "")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	_, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", ""))
	if apperrors.KindOf(err) != apperrors.CodeSlotUnavailable {
		t.Errorf("expected SLOT_UNAVAILABLE, got %v", err)
	}
	if len(f.store.appointments) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(f.store.appointments))
	}
}

func TestBook_UnknownSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", ""))
	if apperrors.KindOf(err) != apperrors.CodeSlotUnavailable {
		t.Errorf("expected SLOT_UNAVAILABLE, got %v", err)
	}
}

func TestBook_FailureReleasesReservation(t *testing.T) {
	tests := []struct {
		name     string
		doctorID string
		setup    func(*memStore)
		wantCode string
	}{
		{"doctor not found", "D404", func(*memStore) {}, apperrors.CodeDoctorNotFound},
		{"insert fails", "D123", func(s *memStore) { s.failInsert = context.DeadlineExceeded }, apperrors.CodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			key := f.store.addSlot(tt.doctorID, "2024-06-01", "09:00")
			tt.setup(f.store)

			_, err := f.svc.Book(context.Background(), testPatient, bookIntent(tt.doctorID, "2024-06-01", "09:00", "09:30", ""))
			if got := apperrors.KindOf(err); got != tt.wantCode {
				t.Fatalf("expected %s, got %s (%v)", tt.wantCode, got, err)
			}
			if f.store.slots[key].IsBooked {
				t.Error("slot must not stay reserved after an aborted booking")
			}
			if len(f.store.appointments) != 0 {
				t.Error("no appointment may be left behind")
			}
			if len(f.publisher.messages) != 0 {
				t.Error("no event may be published for a failed booking")
			}
		})
	}
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	f.store.addSlot("D123", "2024-06-01", "09:00")

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*model.BookingResult
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", ""))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results = append(results, r)
		}()
	}
	wg.Wait()

	if len(results) != 1 {
		t.Fatalf("expected exactly one booking, got %d", len(results))
	}
	for _, err := range errs {
		if apperrors.KindOf(err) != apperrors.CodeSlotUnavailable {
			t.Errorf("expected SLOT_UNAVAILABLE, got %v", err)
		}
	}
	if len(f.store.appointments) != 1 {
		t.Errorf("expected one stored appointment, got %d", len(f.store.appointments))
	}
}

func TestBook_PublishesBookedEvent(t *testing.T) {
	f := newFixture(t)
	f.store.addSlot("D123", "2024-06-01", "09:00")

	result, err := f.svc.Book(context.Background(), testPatient, bookIntent("D123", "2024-06-01", "09:00", "09:30", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.publisher.messages) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.messages))
	}
	msg := f.publisher.messages[0]
	if msg.Key != result.AppointmentID {
		t.Errorf("expected key %s, got %s", result.AppointmentID, msg.Key)
	}
	if msg.Headers[kafka.HeaderEventType] != kafka.EventAppointmentBooked {
		t.Errorf("unexpected event type %s", msg.Headers[kafka.HeaderEventType])
	}
	var event kafka.AppointmentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if event.Status != model.AppointmentStatusPendingPayment || event.Cost != 150 {
		t.Errorf("unexpected event payload: %+v", event)
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	f.store.appointments["A1"] = &model.Appointment{ID: "A1", Status: model.AppointmentStatusPendingPayment}

	appt, err := f.svc.GetByID(context.Background(), "A1")
	if err != nil || appt.ID != "A1" {
		t.Fatalf("expected appointment A1, got %v, %v", appt, err)
	}

	_, err = f.svc.GetByID(context.Background(), "A2")
	if apperrors.KindOf(err) != apperrors.CodeAppointmentNotFound {
		t.Errorf("expected APPOINTMENT_NOT_FOUND, got %v", err)
	}

	_, err = f.svc.GetByID(context.Background(), " ")
	if apperrors.KindOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestConfirmationNumber(t *testing.T) {
	if got := ConfirmationNumber("2024-06-01", "abcdef123456"); got != "APT-20240601-abcdef" {
		t.Errorf("unexpected confirmation number %s", got)
	}
	if got := ConfirmationNumber("2024-06-01", "abc"); got != "APT-20240601-abc" {
		t.Errorf("unexpected confirmation number %s", got)
	}
}
