package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-ingest/internal/extract"
	"resume-ingest/internal/llm"
	"resume-ingest/internal/shared/metrics"
	"resume-ingest/internal/shared/storage/object"
	"resume-ingest/internal/shared/telemetry"
	"resume-ingest/internal/shared/util"
)

const signedURLTTL = 15 * time.Minute

// Service runs the ingestion pipeline: extract text from the uploaded
// document, parse it with the extraction service, store the blob, and
// replace the user's resume graph in one transaction.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	LLM   llm.Client

	locks *userLocks
	now   func() time.Time
	newID func() string
}

func NewService(repo Repo, store object.ObjectStore, client llm.Client) *Service {
	return &Service{
		Repo:  repo,
		Store: store,
		LLM:   client,
		locks: newUserLocks(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Upload ingests one document and makes it the user's current resume. The
// previous resume (rows and blob) is replaced; the pipeline runs
// synchronously so a 2xx response means the new graph is committed.
func (s *Service) Upload(ctx context.Context, userID, fileName string, document []byte) (Resume, error) {
	if userID == "" || fileName == "" || len(document) == 0 {
		return Resume{}, ErrInvalidInput
	}
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	metrics.IncIngestStarted()
	started := s.now()

	unlock := s.locks.lock(userID)
	defer unlock()

	res, err := s.ingest(ctx, userID, fileName, sanitized, document)
	if err != nil {
		metrics.IncIngestFailed(failureKind(err))
		return Resume{}, err
	}

	metrics.IncIngestCompleted()
	metrics.ObserveIngestDuration(s.now().Sub(started))
	return res, nil
}

func (s *Service) ingest(ctx context.Context, userID, fileName, sanitized string, document []byte) (Resume, error) {
	// The old blob is reaped before the new one is written, matching the
	// row-level full replace. A failed delete never fails the ingest; it
	// only leaves an orphan behind.
	if prev, err := s.Repo.CurrentByUser(ctx, userID); err == nil {
		s.reapBlob(ctx, userID, prev.StorageKey)
	} else if !errors.Is(err, ErrNotFound) {
		return Resume{}, fmt.Errorf("%w: lookup current resume: %v", ErrPersistence, err)
	}

	mimeType := http.DetectContentType(document)
	text, err := extract.Text(ctx, document, mimeType, fileName)
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return Resume{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	raw, err := s.LLM.ParseResume(ctx, text)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	parsed, err := DecodeParsed(raw)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	storageKey := s.buildStorageKey(userID, sanitized)
	if _, err := s.Store.Put(ctx, storageKey, mimeType, bytes.NewReader(document)); err != nil {
		return Resume{}, fmt.Errorf("%w: put %s: %v", ErrBlob, storageKey, err)
	}

	rec := NewResume{
		ID:         s.newID(),
		UserID:     userID,
		StorageKey: storageKey,
		FileName:   fileName,
		Text:       text,
		CreatedAt:  s.now(),
		Parsed:     parsed,
	}
	res, err := s.Repo.Replace(ctx, rec)
	if err != nil {
		// The transaction rolled back, so the freshly written blob has no
		// row pointing at it. Reap it the same best-effort way.
		s.reapBlob(ctx, userID, storageKey)
		return Resume{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return res, nil
}

// Current returns the user's resume together with a short-lived download URL
// for its blob.
func (s *Service) Current(ctx context.Context, userID string) (Resume, string, error) {
	if userID == "" {
		return Resume{}, "", ErrInvalidInput
	}
	res, err := s.Repo.CurrentByUser(ctx, userID)
	if err != nil {
		return Resume{}, "", err
	}
	url, err := s.Store.SignedURL(ctx, res.StorageKey, signedURLTTL)
	if err != nil {
		return Resume{}, "", fmt.Errorf("%w: sign %s: %v", ErrBlob, res.StorageKey, err)
	}
	return res, url, nil
}

// Delete removes the user's resume rows and reaps the blobs. Deleting a user
// with no resume is a no-op.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	keys, err := s.Repo.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, key := range keys {
		s.reapBlob(ctx, userID, key)
	}
	return nil
}

func (s *Service) reapBlob(ctx context.Context, userID, storageKey string) {
	if storageKey == "" {
		return
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		metrics.IncOrphanedBlob()
		telemetry.Warn("resumes.blob.orphaned", map[string]any{
			"user_id":     userID,
			"storage_key": storageKey,
			"err":         err.Error(),
		})
	}
}

func (s *Service) buildStorageKey(userID, sanitized string) string {
	token := strings.ReplaceAll(s.newID(), "-", "")
	return util.HashUserKey(userID) + "/" + token + "_" + sanitized
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "validation"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrBlob):
		return "blob"
	default:
		return "persistence"
	}
}
