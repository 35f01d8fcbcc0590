package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "medibites/internal/payments/errors"
	"medibites/pkg/config"
	mongotx "medibites/pkg/db/mongo"
	"medibites/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PatientsCollection     = "patients"
	TransactionsCollection = "transactions"
	AppointmentsCollection = "appointments"
)

// LedgerRepository owns patient balances, ledger entries and the payment
// fields of appointments. Every write is conditional so that, inside a
// transaction, a concurrent settlement aborts instead of double-applying.
type LedgerRepository interface {
	FindPatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	// Debit subtracts amount only while balance >= amount and returns the new balance.
	Debit(ctx context.Context, patientID string, amount float64) (float64, error)
	AppendEntry(ctx context.Context, entry *model.Transaction) error
	// ConfirmAppointment moves a pending_payment appointment to confirmed.
	ConfirmAppointment(ctx context.Context, appointmentID, transactionID string, paidAt time.Time) error
	FindEntriesByAppointment(ctx context.Context, appointmentID string) ([]*model.Transaction, error)
}

type mongoLedgerRepository struct {
	cfg          *config.Config
	patients     *mongo.Collection
	transactions *mongo.Collection
	appointments *mongo.Collection
}

func NewMongoLedgerRepository(cfg *config.Config) LedgerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLedgerRepository{
		cfg:          cfg,
		patients:     db.Collection(PatientsCollection),
		transactions: db.Collection(TransactionsCollection),
		appointments: db.Collection(AppointmentsCollection),
	}
}

func (r *mongoLedgerRepository) FindPatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var patient model.Patient
	if err := r.patients.FindOne(ctx, bson.M{"email": email}).Decode(&patient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return &patient, nil
}

func (r *mongoLedgerRepository) Debit(ctx context.Context, patientID string, amount float64) (float64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":     patientID,
		"balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var patient model.Patient
	if err := r.patients.FindOneAndUpdate(ctx, filter, update, opts).Decode(&patient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, paymentserrors.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("failed to debit patient: %w", err)
	}
	return patient.Balance, nil
}

func (r *mongoLedgerRepository) AppendEntry(ctx context.Context, entry *model.Transaction) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.transactions.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepository) ConfirmAppointment(ctx context.Context, appointmentID, transactionID string, paidAt time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    appointmentID,
		"status": model.AppointmentStatusPendingPayment,
		"isPaid": false,
	}
	update := bson.M{
		"$set": bson.M{
			"status":        model.AppointmentStatusConfirmed,
			"isPaid":        true,
			"transactionId": transactionID,
			"paymentDate":   paidAt,
			"updatedAt":     paidAt,
		},
		"$unset": bson.M{"otpHash": ""},
	}

	result, err := r.appointments.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to confirm appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrNotPending
	}
	return nil
}

func (r *mongoLedgerRepository) FindEntriesByAppointment(ctx context.Context, appointmentID string) ([]*model.Transaction, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.transactions.Find(ctx, bson.M{"appointmentId": appointmentID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.Transaction
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}
