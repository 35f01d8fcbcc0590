package service

import (
	"context"
	"sync"
	"testing"
	"time"

	appterrors "medibites/internal/appointments/errors"
	"medibites/internal/otp"
	paymentserrors "medibites/internal/payments/errors"
	"medibites/internal/payments/validator"
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

// memLedger is an in-memory store whose transactions are serialised and
// rolled back on error.
type memLedger struct {
	mu           sync.Mutex
	patients     map[string]*model.Patient
	appointments map[string]*model.Appointment
	entries      []*model.Transaction
	failConfirm  error
}

func newMemLedger() *memLedger {
	return &memLedger{
		patients:     map[string]*model.Patient{},
		appointments: map[string]*model.Appointment{},
	}
}

func (m *memLedger) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	patients := make(map[string]*model.Patient, len(m.patients))
	for k, v := range m.patients {
		copied := *v
		patients[k] = &copied
	}
	appointments := make(map[string]*model.Appointment, len(m.appointments))
	for k, v := range m.appointments {
		copied := *v
		appointments[k] = &copied
	}
	entries := append([]*model.Transaction(nil), m.entries...)

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		m.patients = patients
		m.appointments = appointments
		m.entries = entries
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.StoreUnavailable("Transaction failed", err)
	}
	return nil
}

func (m *memLedger) FindPatientByEmail(_ context.Context, email string) (*model.Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, paymentserrors.ErrPatientNotFound
}

func (m *memLedger) Debit(_ context.Context, patientID string, amount float64) (float64, error) {
	p, ok := m.patients[patientID]
	if !ok || p.Balance < amount {
		return 0, paymentserrors.ErrInsufficientFunds
	}
	p.Balance -= amount
	return p.Balance, nil
}

func (m *memLedger) AppendEntry(_ context.Context, entry *model.Transaction) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLedger) ConfirmAppointment(_ context.Context, appointmentID, transactionID string, paidAt time.Time) error {
	if m.failConfirm != nil {
		return m.failConfirm
	}
	appt, ok := m.appointments[appointmentID]
	if !ok || !appt.PendingPayment() {
		return paymentserrors.ErrNotPending
	}
	appt.Status = model.AppointmentStatusConfirmed
	appt.IsPaid = true
	appt.TransactionID = transactionID
	appt.PaymentDate = &paidAt
	appt.OTPHash = ""
	return nil
}

func (m *memLedger) FindEntriesByAppointment(_ context.Context, appointmentID string) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, e := range m.entries {
		if e.AppointmentID == appointmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// appointment repository view over the same store.
type memAppointments struct{ store *memLedger }

func (r memAppointments) Insert(_ context.Context, appt *model.Appointment) error {
	r.store.appointments[appt.ID] = appt
	return nil
}

func (r memAppointments) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	appt, ok := r.store.appointments[id]
	if !ok {
		return nil, appterrors.ErrNotFound
	}
	copied := *appt
	return &copied, nil
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

type fixture struct {
	store     *memLedger
	svc       PaymentService
	publisher *recordingPublisher
	otp       string
}

const (
	appointmentID = "3f2b9c1e-0000-4000-8000-000000000001"
	patientEmail  = "asha@example.com"
)

func newFixture(t *testing.T, balance, cost float64) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second}

	authority := otp.NewAuthority(bcrypt.MinCost)
	code, hash, err := authority.Issue()
	if err != nil {
		t.Fatalf("failed to issue otp: %v", err)
	}

	store := newMemLedger()
	store.patients["P1"] = &model.Patient{ID: "P1", Email: patientEmail, Balance: balance}
	store.appointments[appointmentID] = &model.Appointment{
		ID:        appointmentID,
		DoctorID:  "D123",
		PatientID: "P1",
		Date:      "2024-06-01",
		StartTime: "09:00",
		Cost:      cost,
		Status:    model.AppointmentStatusPendingPayment,
		OTPHash:   hash,
	}

	publisher := &recordingPublisher{}
	svc := NewPaymentService(
		store,
		memAppointments{store},
		store,
		authority,
		validator.NewPaymentValidator(log),
		kafka.NewAppointmentEvents(publisher, "payments-test", log),
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		cfg,
	)
	return &fixture{store: store, svc: svc, publisher: publisher, otp: code}
}

func (f *fixture) request(amount float64, code string) model.PaymentRequest {
	return model.PaymentRequest{
		PatientEmail:  " Asha@Example.com ",
		Amount:        amount,
		AppointmentID: appointmentID,
		OTP:           code,
	}
}

func wrongCode(code string) string {
	if code == "111111" {
		return "222222"
	}
	return "111111"
}

func TestPay_Success(t *testing.T) {
	f := newFixture(t, 500, 150)

	result, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.NewBalance != 350 || result.Message != "Payment successful!" {
		t.Errorf("unexpected result: %+v", result)
	}

	if len(f.store.entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(f.store.entries))
	}
	entry := f.store.entries[0]
	if entry.ID != result.TransactionID || entry.BalanceAfter != 350 || entry.Amount != 150 {
		t.Errorf("unexpected ledger entry: %+v", entry)
	}
	if entry.Status != model.TransactionStatusCompleted || entry.UserID != "P1" || entry.AppointmentID != appointmentID {
		t.Errorf("unexpected ledger entry: %+v", entry)
	}
	if entry.Description != "Appointment payment - "+appointmentID {
		t.Errorf("unexpected description %q", entry.Description)
	}

	appt := f.store.appointments[appointmentID]
	if appt.Status != model.AppointmentStatusConfirmed || !appt.IsPaid || appt.TransactionID != result.TransactionID {
		t.Errorf("appointment not confirmed: %+v", appt)
	}
	if f.store.patients["P1"].Balance != 350 {
		t.Errorf("expected balance 350, got %v", f.store.patients["P1"].Balance)
	}

	if len(f.publisher.messages) != 1 || f.publisher.messages[0].Headers[kafka.HeaderEventType] != kafka.EventAppointmentConfirmed {
		t.Errorf("expected one confirmed event, got %+v", f.publisher.messages)
	}
}

func TestPay_InsufficientFundsChangesNothing(t *testing.T) {
	f := newFixture(t, 100, 150)

	_, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
	if apperrors.KindOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
	if len(f.store.entries) != 0 {
		t.Error("no ledger entry may be created")
	}
	if f.store.appointments[appointmentID].Status != model.AppointmentStatusPendingPayment {
		t.Error("appointment must remain pending_payment")
	}
	if f.store.patients["P1"].Balance != 100 {
		t.Error("balance must not change")
	}
}

func TestPay_InsufficientFundsReportedBeforeAmountMismatch(t *testing.T) {
	f := newFixture(t, 100, 200)

	_, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
	if apperrors.KindOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
	if len(f.store.entries) != 0 || f.store.patients["P1"].Balance != 100 {
		t.Error("rejected payment must not write")
	}
}

func TestPay_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *fixture, req *model.PaymentRequest)
		wantCode string
	}{
		{"wrong otp", func(f *fixture, req *model.PaymentRequest) { req.OTP = wrongCode(f.otp) }, apperrors.CodeInvalidOTP},
		{"malformed otp", func(f *fixture, req *model.PaymentRequest) { req.OTP = "12345" }, apperrors.CodeInvalidOTP},
		{"unknown patient", func(f *fixture, req *model.PaymentRequest) { req.PatientEmail = "nobody@example.com" }, apperrors.CodePatientNotFound},
		{"unknown appointment", func(f *fixture, req *model.PaymentRequest) { req.AppointmentID = "missing" }, apperrors.CodeAppointmentNotFound},
		{"amount differs from cost", func(f *fixture, req *model.PaymentRequest) { req.Amount = 120 }, apperrors.CodeInvalidInput},
		{"negative amount", func(f *fixture, req *model.PaymentRequest) { req.Amount = -5 }, apperrors.CodeInvalidInput},
		{"bad email", func(f *fixture, req *model.PaymentRequest) { req.PatientEmail = "asha" }, apperrors.CodeInvalidInput},
		{"missing appointment id", func(f *fixture, req *model.PaymentRequest) { req.AppointmentID = "" }, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 500, 150)
			req := f.request(150, f.otp)
			tt.mutate(f, &req)

			_, err := f.svc.Pay(context.Background(), req)
			if got := apperrors.KindOf(err); got != tt.wantCode {
				t.Fatalf("expected %s, got %s (%v)", tt.wantCode, got, err)
			}
			if len(f.store.entries) != 0 || f.store.patients["P1"].Balance != 500 {
				t.Error("rejected payment must not write")
			}
		})
	}
}

func TestPay_ReplayIsRejected(t *testing.T) {
	f := newFixture(t, 500, 150)

	if _, err := f.svc.Pay(context.Background(), f.request(150, f.otp)); err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	_, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
	kind := apperrors.KindOf(err)
	if kind != apperrors.CodeAppointmentAlreadyPaid && kind != apperrors.CodeInvalidOTP {
		t.Fatalf("expected APPOINTMENT_ALREADY_PAID or INVALID_OTP, got %v", err)
	}
	if len(f.store.entries) != 1 || f.store.patients["P1"].Balance != 350 {
		t.Error("replay must not debit again")
	}
}

func TestPay_ConfirmFailureRollsBackDebit(t *testing.T) {
	f := newFixture(t, 500, 150)
	f.store.failConfirm = context.DeadlineExceeded

	_, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
	if apperrors.KindOf(err) != apperrors.CodeStoreUnavailable {
		t.Fatalf("expected STORE_UNAVAILABLE, got %v", err)
	}
	if f.store.patients["P1"].Balance != 500 {
		t.Errorf("debit must be rolled back, balance is %v", f.store.patients["P1"].Balance)
	}
	if len(f.store.entries) != 0 {
		t.Error("ledger entry must be rolled back")
	}
	if len(f.publisher.messages) != 0 {
		t.Error("no event may be published for an aborted payment")
	}
}

func TestPay_ConcurrentAttemptsConfirmOnce(t *testing.T) {
	f := newFixture(t, 1000, 150)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Pay(context.Background(), f.request(150, f.otp))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if apperrors.KindOf(err) != apperrors.CodeAppointmentAlreadyPaid {
				t.Errorf("expected APPOINTMENT_ALREADY_PAID, got %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one settlement, got %d", successes)
	}
	if len(f.store.entries) != 1 {
		t.Errorf("expected one ledger entry, got %d", len(f.store.entries))
	}
	if f.store.patients["P1"].Balance != 850 {
		t.Errorf("expected balance 850, got %v", f.store.patients["P1"].Balance)
	}
}

func TestPay_BalanceNeverNegative(t *testing.T) {
	f := newFixture(t, 200, 150)

	// Two appointments for the same patient; only one can be afforded.
	authority := otp.NewAuthority(bcrypt.MinCost)
	code, hash, err := authority.Issue()
	if err != nil {
		t.Fatalf("failed to issue otp: %v", err)
	}
	second := "3f2b9c1e-0000-4000-8000-000000000002"
	f.store.appointments[second] = &model.Appointment{
		ID:      second,
		Cost:    150,
		Status:  model.AppointmentStatusPendingPayment,
		OTPHash: hash,
	}

	requests := []model.PaymentRequest{
		f.request(150, f.otp),
		{PatientEmail: patientEmail, Amount: 150, AppointmentID: second, OTP: code},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(requests))
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req model.PaymentRequest) {
			defer wg.Done()
			_, errs[i] = f.svc.Pay(context.Background(), req)
		}(i, req)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			if apperrors.KindOf(err) != apperrors.CodeInsufficientFunds {
				t.Errorf("expected INSUFFICIENT_FUNDS, got %v", err)
			}
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly one failure, got %d", failures)
	}
	if f.store.patients["P1"].Balance != 50 {
		t.Errorf("expected balance 50, got %v", f.store.patients["P1"].Balance)
	}
}

func TestLedgerEntries(t *testing.T) {
	f := newFixture(t, 500, 150)
	if _, err := f.svc.Pay(context.Background(), f.request(150, f.otp)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := f.svc.LedgerEntries(context.Background(), appointmentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one entry, got %d", len(entries))
	}

	entries, err = f.svc.LedgerEntries(context.Background(), "other")
	if err != nil || entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", entries, err)
	}
}
