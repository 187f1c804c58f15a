// Package bootstrap wires configuration, infrastructure adapters, and
// usecases into a ready application graph shared by the api and worker
// binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/praktiki/internship-credit-portal/internal/ceescm"
	"github.com/praktiki/internship-credit-portal/internal/config"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/core/usecase"
	"github.com/praktiki/internship-credit-portal/internal/export"
	"github.com/praktiki/internship-credit-portal/internal/extraction"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/creditbank/abc"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/nlp/spacy"
	natsqueue "github.com/praktiki/internship-credit-portal/internal/infrastructure/queue/nats"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/repository/postgres"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/resilience"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/storage/localfs"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/textacq"
	"github.com/praktiki/internship-credit-portal/internal/matching"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.MessageQueue
	Students ports.StudentRepository

	IngestUC    *usecase.IngestCertificateUseCase
	ProcessUC   *usecase.ProcessCertificateUseCase
	SubmitUC    *usecase.SubmitInternshipUseCase
	ReviewUC    *usecase.MentorReviewUseCase
	ApprovalsUC *usecase.ApprovalQueryUseCase
	Exporter    *export.Service

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	uploadRepo := postgres.NewUploadRepository(db)
	submissionRepo := postgres.NewSubmissionRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	approvalRepo := postgres.NewApprovalRepository(db)
	schemas := []struct {
		name   string
		ensure func(context.Context) error
	}{
		{"uploads", uploadRepo.EnsureSchema},
		{"submissions", submissionRepo.EnsureSchema},
		{"students", studentRepo.EnsureSchema},
		{"approvals", approvalRepo.EnsureSchema},
	}
	for _, s := range schemas {
		if err := s.ensure(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure %s schema: %w", s.name, err)
		}
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	// The NLP capability is selected once here; a nil port disables the
	// model-backed paths everywhere downstream.
	var (
		recognizer ports.EntityRecognizer
		semantic   ports.SemanticSimilarity
		lemmatizer ports.Lemmatizer
		chunker    ports.NounChunker
	)
	if cfg.NLPEnabled {
		nlpClient := spacy.New(cfg.NLPBaseURL, cfg.NLPModel, executor)
		recognizer = nlpClient
		semantic = nlpClient
		lemmatizer = nlpClient
		chunker = nlpClient
	}

	extractor := extraction.New(recognizer)
	tokenizer := ceescm.New(lemmatizer, chunker)
	matcher := matching.New(matching.MustLoadCatalog(), semantic)
	acquirer := textacq.New(textacq.Config{
		Tesseract: cfg.TesseractBin,
		Pdftoppm:  cfg.PdftoppmBin,
		Language:  cfg.OCRLanguage,
		DPI:       cfg.OCRDPI,
	}, logger)
	bank := abc.New(cfg.ABCBaseURL, cfg.ABCMode, executor)

	ingestUC := usecase.NewIngestCertificateUseCase(uploadRepo, storage, queue)
	processUC := usecase.NewProcessCertificateUseCase(uploadRepo, storage, acquirer, extractor)
	submitUC := usecase.NewSubmitInternshipUseCase(
		submissionRepo, uploadRepo, storage, tokenizer, matcher,
		bank, approvalRepo, studentRepo, logger,
	)
	reviewUC := usecase.NewMentorReviewUseCase(
		submissionRepo, matcher, bank, approvalRepo, studentRepo, logger,
	)
	approvalsUC := usecase.NewApprovalQueryUseCase(approvalRepo, bank, logger)
	exporter := export.NewService(submissionRepo, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:    queue,
		Students: studentRepo,

		IngestUC:    ingestUC,
		ProcessUC:   processUC,
		SubmitUC:    submitUC,
		ReviewUC:    reviewUC,
		ApprovalsUC: approvalsUC,
		Exporter:    exporter,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
