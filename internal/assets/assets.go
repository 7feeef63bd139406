// Package assets turns uploaded file parts into stable, publicly
// servable reference URLs. The core treats those URLs as opaque
// strings; no file content validation happens here.
package assets

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind identifies an asset slot on an invoice or business profile.
type Kind string

const (
	KindLogo      Kind = "logo"
	KindStamp     Kind = "stamp"
	KindSignature Kind = "signature"
)

// fieldAliases lists the accepted multipart field names per kind. The
// first populated alias wins.
var fieldAliases = map[Kind][]string{
	KindLogo:      {"logoName", "logo"},
	KindStamp:     {"stampName", "stamp"},
	KindSignature: {"signatureNameMeta", "signature"},
}

// References maps asset kinds to reference URLs.
type References map[Kind]string

// Resolve merges freshly uploaded references with client-supplied ones.
// An upload always overrides a client URL of the same kind; without an
// upload the client URL passes through unchanged.
func Resolve(uploaded, client References) References {
	merged := References{}
	for kind, url := range client {
		if url != "" {
			merged[kind] = url
		}
	}
	for kind, url := range uploaded {
		if url != "" {
			merged[kind] = url
		}
	}
	return merged
}

// Store persists uploads to local disk and serves them back under the
// configured public base URL.
type Store struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

func NewStore(cfg config.Config, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:     cfg.UploadDir,
		baseURL: cfg.PublicBaseURL,
		log:     log.Named("assets.store"),
	}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// SaveUploads writes every recognized file part to disk and returns
// the reference URL per asset kind. Unrecognized fields are ignored.
func (s *Store) SaveUploads(form *multipart.Form) (References, error) {
	refs := References{}
	if form == nil {
		return refs, nil
	}

	for kind, aliases := range fieldAliases {
		for _, field := range aliases {
			headers := form.File[field]
			if len(headers) == 0 || headers[0] == nil {
				continue
			}
			url, err := s.saveFile(headers[0])
			if err != nil {
				return nil, err
			}
			refs[kind] = url
			break
		}
	}

	return refs, nil
}

func (s *Store) saveFile(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	s.log.Debug("stored upload",
		zap.String("original", header.Filename),
		zap.String("stored", name),
	)
	return s.baseURL + "/uploads/" + name, nil
}
