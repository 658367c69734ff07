// Package storage guarda los documentos de autorización de liberación en un sistema de archivos
// (disco o memoria) detrás de handles opacos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/pkg/config"
)

var _ logistics.DocumentStorage = (*DocumentStore)(nil)

const maxNameLen = 80

// DocumentStore implementación de DocumentStorage sobre afero.
// El handle es "<uuid>/<nombre saneado>": único aunque dos clientes suban el mismo nombre.
type DocumentStore struct {
	fs afero.Fs
}

// New devuelve un almacén sobre fs.
func New(fs afero.Fs) *DocumentStore {
	return &DocumentStore{fs: fs}
}

// NewFromConfig usa disco bajo cfg.Dir o memoria si Dir está vacío.
func NewFromConfig(cfg config.StorageConfig) (*DocumentStore, error) {
	if cfg.Dir == "" {
		return New(afero.NewMemMapFs()), nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), cfg.Dir)), nil
}

// Save escribe el contenido y devuelve el handle.
func (s *DocumentStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	handle := uuid.New().String() + "/" + sanitize(filename)
	dir := path.Dir(handle)
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	f, err := s.fs.OpenFile(handle, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.fs.RemoveAll(dir)
		return "", fmt.Errorf("save document: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.RemoveAll(dir)
		return "", fmt.Errorf("save document: %w", err)
	}
	return handle, nil
}

// Open abre el documento; handle inexistente => *domain.NotFoundError.
func (s *DocumentStore) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := validHandle(handle)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewNotFoundError("documento", handle)
		}
		return nil, fmt.Errorf("open document: %w", err)
	}
	return f, nil
}

// Delete borra el documento y su directorio. Borrar un handle inexistente no es error.
func (s *DocumentStore) Delete(ctx context.Context, handle string) error {
	name, err := validHandle(handle)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(path.Dir(name)); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// validHandle acepta solo "<uuid>/<nombre>" sin segmentos de ruta extra.
func validHandle(handle string) (string, error) {
	id, name, ok := strings.Cut(handle, "/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", domain.NewValidationError("document", "handle inválido")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NewValidationError("document", "handle inválido")
	}
	return handle, nil
}

func sanitize(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		out = "documento"
	}
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}
	return out
}
