package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	procurementDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/procurement"
	sareeDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/events"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/metrics"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/pricing"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/frahmantamala/couture-bookkeeping/internal/fxrate"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, r *procurementDatamodel.ProcurementRecord) error
	GetByID(ctx context.Context, id string) (*procurementDatamodel.ProcurementRecord, error)
	List(ctx context.Context) ([]*procurementDatamodel.ProcurementRecord, error)
	ListByStatus(ctx context.Context, status workflow.Status) ([]*procurementDatamodel.ProcurementRecord, error)
	// Transition applies review only while the record is still in from.
	// It reports false when another reviewer got there first.
	Transition(ctx context.Context, id string, from workflow.Status, review Review) (bool, error)
}

// ExpenseLedger answers whether an approval's additional costs were booked.
type ExpenseLedger interface {
	HasProcurementExpense(ctx context.Context, procurementID string) (bool, error)
}

// Service runs the procurement state machine: pending to approved or rejected, once.
type Service struct {
	repo     RepositoryAPI
	sarees   saree.RepositoryAPI
	rates    fxrate.Provider
	expenses ExpenseLedger
	eventBus *events.EventBus
	pricing  internal.PricingConfig
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, sarees saree.RepositoryAPI, rates fxrate.Provider, expenses ExpenseLedger, eventBus *events.EventBus, pricingCfg internal.PricingConfig, logger *slog.Logger) *Service {
	if pricingCfg.DefaultMarkupPercentage == 0 {
		pricingCfg.DefaultMarkupPercentage = internal.DefaultMarkupPercentage
	}
	if pricingCfg.LegacyINRPerUSD == 0 {
		pricingCfg.LegacyINRPerUSD = internal.DefaultLegacyINRPerUSD
	}
	return &Service{
		repo:     repo,
		sarees:   sarees,
		rates:    rates,
		expenses: expenses,
		eventBus: eventBus,
		pricing:  pricingCfg,
		logger:   logger,
	}
}

// Submit records a new purchase. The saree is written first and the record second;
// there is no transaction spanning both.
func (s *Service) Submit(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*Record, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("procurement validation failed", "error", err, "user_id", submitter.ID)
		return nil, err
	}

	now := time.Now().UTC()
	item := s.newSaree(dto, now)
	item.ProcurementStatus = workflow.StatusPending

	if err := s.sarees.Create(ctx, saree.ToDataModel(item)); err != nil {
		s.logger.Error("failed to create saree", "error", err, "user_id", submitter.ID)
		return nil, fmt.Errorf("failed to create saree: %w", err)
	}

	record := &Record{
		ID:                   uuid.NewString(),
		SareeID:              item.ID,
		ProcuredByUserID:     submitter.ID,
		CostINR:              dto.ProcurementCostINR,
		INRToUSDExchangeRate: 0,
		ProcurementDate:      now,
		Status:               workflow.StatusPending,
	}

	if err := s.repo.Create(ctx, ToDataModel(record)); err != nil {
		s.logger.Error("procurement record write failed after saree was created",
			"error", err,
			"saree_id", item.ID,
			"reconciliation_required", true)
		return nil, fmt.Errorf("failed to create procurement record: %w", err)
	}

	_ = s.eventBus.Publish(ctx, events.NewProcurementSubmittedEvent(record.ID, record.SareeID, submitter.ID, record.CostINR))

	s.logger.Info("procurement submitted",
		"procurement_id", record.ID,
		"saree_id", record.SareeID,
		"user_id", submitter.ID,
		"cost_inr", record.CostINR)

	return record, nil
}

// ListPending returns every pending record. All reviewer roles see the same list.
func (s *Service) ListPending(ctx context.Context, requester *coreuser.User) ([]*Record, error) {
	rows, err := s.repo.ListByStatus(ctx, workflow.StatusPending)
	if err != nil {
		s.logger.Error("failed to list pending procurements", "error", err)
		return nil, err
	}
	s.logger.Debug("listed pending procurements", "count", len(rows), "user_id", requester.ID, "role", requester.Role)
	return FromDataModels(rows), nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list procurements", "error", err)
		return nil, err
	}
	return FromDataModels(rows), nil
}

// Approve prices the saree and closes the record. It runs as a saga:
//  1. claim the pending to approved transition on the record
//  2. set the saree's status and selling price
//  3. publish procurement.approved synchronously so the expense module books the
//     additional costs
//
// A failure after step 1 leaves the record approved; it is logged and counted as
// needing reconciliation and reported as an internal error.
func (s *Service) Approve(ctx context.Context, id string, dto ApproveDTO, reviewer *coreuser.User) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, item, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	rate, err := s.exchangeRate(ctx, dto.ExchangeRateOverride)
	if err != nil {
		metrics.RecordProcurementReview("failed")
		return nil, err
	}

	markup := item.MarkupPercentage
	if dto.MarkupOverride != nil {
		markup = *dto.MarkupOverride
	}
	additional := 0.0
	if dto.AdditionalCostsINR != nil {
		additional = *dto.AdditionalCostsINR
	}

	if additional > 0 && pricing.ConvertINR(additional, rate) <= 0 {
		return nil, internal.NewValidationFieldError("additional_costs_inr",
			"additional_costs_inr converts to less than one cent", internal.ErrCodeInvalidAmount)
	}

	quote := pricing.Approve(record.CostINR, additional, rate, markup)
	price := quote.SellingPriceUSD
	reviewerID := reviewer.ID

	review := Review{
		Status:               workflow.StatusApproved,
		ReviewedByUserID:     &reviewerID,
		ReviewDate:           time.Now().UTC(),
		ExchangeRate:         &rate,
		AdditionalCostsINR:   &additional,
		MarkupOverride:       &markup,
		FinalSellingPriceUSD: &price,
		Notes:                dto.Notes,
	}

	if err := s.claim(ctx, record, review); err != nil {
		return nil, err
	}

	if err := s.sarees.ApplyReview(ctx, item.ID, workflow.StatusApproved, &price); err != nil {
		return nil, s.reconciliationRequired(ctx, record, "saree_update", err)
	}

	event := events.NewProcurementApprovedEvent(record.ID, item.ID, item.Name, reviewerID, additional, rate, price)
	if err := s.eventBus.PublishSync(ctx, event); err != nil {
		return nil, s.reconciliationRequired(ctx, record, "expense_creation", err)
	}

	metrics.RecordProcurementReview("approved")
	s.logger.Info("procurement approved",
		"procurement_id", record.ID,
		"saree_id", item.ID,
		"reviewer_id", reviewerID,
		"exchange_rate", rate,
		"markup_percentage", markup,
		"additional_costs_inr", additional,
		"final_selling_price_usd", price)

	return record, nil
}

// Reject closes the record and marks the saree rejected. The saree keeps a null price.
func (s *Service) Reject(ctx context.Context, id string, dto RejectDTO, reviewer *coreuser.User) (*Record, error) {
	record, item, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	reason := dto.RejectionReason
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		reason = &trimmed
		if trimmed == "" {
			reason = nil
		}
	}
	reviewerID := reviewer.ID

	review := Review{
		Status:           workflow.StatusRejected,
		ReviewedByUserID: &reviewerID,
		ReviewDate:       time.Now().UTC(),
		RejectionReason:  reason,
	}

	if err := s.claim(ctx, record, review); err != nil {
		return nil, err
	}

	if err := s.sarees.ApplyReview(ctx, item.ID, workflow.StatusRejected, nil); err != nil {
		return nil, s.reconciliationRequired(ctx, record, "saree_update", err)
	}

	reasonText := ""
	if reason != nil {
		reasonText = *reason
	}
	_ = s.eventBus.Publish(ctx, events.NewProcurementRejectedEvent(record.ID, item.ID, reviewerID, reasonText))

	metrics.RecordProcurementReview("rejected")
	s.logger.Info("procurement rejected",
		"procurement_id", record.ID,
		"saree_id", item.ID,
		"reviewer_id", reviewerID,
		"reason", reasonText)

	return record, nil
}

// SubmitLegacy is the deprecated one-shot flow: the saree is priced from a fixed
// INR-per-USD quote and both rows are created already approved.
func (s *Service) SubmitLegacy(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*saree.Saree, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	s.logger.Warn("deprecated legacy procurement endpoint used", "user_id", submitter.ID)

	now := time.Now().UTC()
	item := s.newSaree(dto, now)
	quote := pricing.Legacy(dto.ProcurementCostINR, s.pricing.LegacyINRPerUSD, item.MarkupPercentage)
	price := quote.SellingPriceUSD
	item.SellingPriceUSD = &price
	item.ProcurementStatus = workflow.StatusApproved

	if err := s.sarees.Create(ctx, saree.ToDataModel(item)); err != nil {
		s.logger.Error("failed to create saree", "error", err, "user_id", submitter.ID)
		return nil, fmt.Errorf("failed to create saree: %w", err)
	}

	record := &Record{
		ID:                   uuid.NewString(),
		SareeID:              item.ID,
		ProcuredByUserID:     submitter.ID,
		CostINR:              dto.ProcurementCostINR,
		INRToUSDExchangeRate: quote.ExchangeRate,
		ProcurementDate:      now,
		Status:               workflow.StatusApproved,
		ReviewDate:           &now,
		FinalSellingPriceUSD: &price,
	}

	if err := s.repo.Create(ctx, ToDataModel(record)); err != nil {
		s.logger.Error("procurement record write failed after saree was created",
			"error", err,
			"saree_id", item.ID,
			"reconciliation_required", true)
		return nil, fmt.Errorf("failed to create procurement record: %w", err)
	}

	return item, nil
}

// Reconcile walks every record and repairs sarees left behind by a partially failed
// review. Approved records with additional costs but no booked expense have their
// approval event replayed. With apply false
// the report lists what would change and nothing is written.
func (s *Service) Reconcile(ctx context.Context, apply bool) (*ReconcileReport, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list procurements: %w", err)
	}
	sareeRows, err := s.sarees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sarees: %w", err)
	}

	byID := make(map[string]*sareeDatamodel.Saree, len(sareeRows))
	for _, row := range sareeRows {
		byID[row.ID] = row
	}

	report := &ReconcileReport{
		RepairedSarees:   []string{},
		ReplayedExpenses: []string{},
		MissingSarees:    []string{},
		OrphanSarees:     []string{},
	}
	referenced := make(map[string]bool, len(records))

	for _, row := range records {
		report.Checked++
		record := FromDataModel(row)
		referenced[record.SareeID] = true

		item, ok := byID[record.SareeID]
		if !ok {
			s.logger.Warn("procurement references a missing saree", "procurement_id", record.ID, "saree_id", record.SareeID)
			report.MissingSarees = append(report.MissingSarees, record.ID)
			continue
		}

		if record.IsPending() {
			continue
		}

		if sareeOutOfSync(record, item) {
			report.RepairedSarees = append(report.RepairedSarees, item.ID)
			if apply {
				var price *float64
				if record.Status == workflow.StatusApproved {
					price = record.FinalSellingPriceUSD
				}
				if err := s.sarees.ApplyReview(ctx, item.ID, record.Status, price); err != nil {
					return report, fmt.Errorf("failed to repair saree %s: %w", item.ID, err)
				}
				s.logger.Info("saree repaired from procurement record", "procurement_id", record.ID, "saree_id", item.ID, "status", record.Status)
			}
		}

		if record.Status == workflow.StatusApproved && record.AdditionalCostsINR() > 0 {
			booked, err := s.expenseBooked(ctx, record.ID)
			if err != nil {
				return report, fmt.Errorf("failed to check expense for %s: %w", record.ID, err)
			}
			if booked {
				continue
			}
			report.ReplayedExpenses = append(report.ReplayedExpenses, record.ID)
			if apply {
				reviewer := ""
				if record.ReviewedByUserID != nil {
					reviewer = *record.ReviewedByUserID
				}
				price := 0.0
				if record.FinalSellingPriceUSD != nil {
					price = *record.FinalSellingPriceUSD
				}
				event := events.NewProcurementApprovedEvent(record.ID, item.ID, item.Name, reviewer,
					record.AdditionalCostsINR(), record.INRToUSDExchangeRate, price)
				if err := s.eventBus.PublishSync(ctx, event); err != nil {
					return report, fmt.Errorf("failed to replay approval %s: %w", record.ID, err)
				}
			}
		}
	}

	for _, row := range sareeRows {
		if !referenced[row.ID] {
			report.OrphanSarees = append(report.OrphanSarees, row.ID)
		}
	}

	s.logger.Info("procurement reconciliation finished",
		"apply", apply,
		"checked", report.Checked,
		"repaired_sarees", len(report.RepairedSarees),
		"replayed_expenses", len(report.ReplayedExpenses),
		"missing_sarees", len(report.MissingSarees),
		"orphan_sarees", len(report.OrphanSarees))

	return report, nil
}

func (s *Service) newSaree(dto SubmitDTO, now time.Time) *saree.Saree {
	markup := s.pricing.DefaultMarkupPercentage
	if dto.MarkupPercentage != nil {
		markup = *dto.MarkupPercentage
	}
	imageURLs := dto.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &saree.Saree{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(dto.SareeName),
		Description:        dto.SareeDescription,
		ProcurementCostINR: dto.ProcurementCostINR,
		MarkupPercentage:   markup,
		ImageURLs:          imageURLs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// loadPending fetches the record and its saree without writing anything.
func (s *Service) loadPending(ctx context.Context, id string) (*Record, *sareeDatamodel.Saree, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	record := FromDataModel(row)

	if !record.IsPending() {
		metrics.RecordProcurementReview("conflict")
		s.logger.Warn("procurement already reviewed", "procurement_id", id, "status", record.Status)
		return nil, nil, internal.ErrProcurementAlreadyReviewed
	}

	item, err := s.sarees.GetByID(ctx, record.SareeID)
	if err != nil {
		if errors.Is(err, internal.ErrSareeNotFound) {
			s.logger.Warn("procurement references a missing saree", "procurement_id", id, "saree_id", record.SareeID)
		}
		return nil, nil, err
	}
	return record, item, nil
}

func (s *Service) claim(ctx context.Context, record *Record, review Review) error {
	ok, err := s.repo.Transition(ctx, record.ID, workflow.StatusPending, review)
	if err != nil {
		metrics.RecordProcurementReview("failed")
		s.logger.Error("failed to transition procurement", "error", err, "procurement_id", record.ID)
		return fmt.Errorf("failed to update procurement: %w", err)
	}
	if !ok {
		metrics.RecordProcurementReview("conflict")
		s.logger.Warn("procurement reviewed concurrently", "procurement_id", record.ID)
		return internal.ErrProcurementAlreadyReviewed
	}
	record.Apply(review)
	return nil
}

// expenseBooked treats every approval as unbooked when no ledger is wired.
func (s *Service) expenseBooked(ctx context.Context, procurementID string) (bool, error) {
	if s.expenses == nil {
		return false, nil
	}
	return s.expenses.HasProcurementExpense(ctx, procurementID)
}

func (s *Service) exchangeRate(ctx context.Context, override *float64) (float64, error) {
	if override != nil {
		return *override, nil
	}
	return s.rates.INRToUSD(ctx)
}

func (s *Service) reconciliationRequired(ctx context.Context, record *Record, step string, cause error) error {
	metrics.RecordProcurementReview("failed")
	metrics.RecordReconciliationRequired(step)
	s.logger.ErrorContext(ctx, "procurement review partially applied",
		"procurement_id", record.ID,
		"saree_id", record.SareeID,
		"status", record.Status,
		"step", step,
		"reconciliation_required", true,
		"error", cause)

	appErr := internal.NewInternalError("Procurement was reviewed but a follow-up step failed; reconciliation required", cause)
	appErr.Code = internal.ErrCodeReconciliationRequired
	return appErr
}

func sareeOutOfSync(record *Record, item *sareeDatamodel.Saree) bool {
	if item.ProcurementStatus != string(record.Status) {
		return true
	}
	if record.Status == workflow.StatusApproved {
		if item.SellingPriceUSD == nil || record.FinalSellingPriceUSD == nil {
			return item.SellingPriceUSD != record.FinalSellingPriceUSD
		}
		return pricing.Round(*item.SellingPriceUSD) != pricing.Round(*record.FinalSellingPriceUSD)
	}
	return item.SellingPriceUSD != nil
}
