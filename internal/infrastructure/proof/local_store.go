package proof

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
)

// Extensões aceitas para comprovantes de pagamento
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// LocalStore guarda comprovantes de pagamento no disco local.
// Serve como implementação de desenvolvimento do colaborador de pagamento;
// em produção o armazenamento fica em um serviço externo.
type LocalStore struct {
	baseDir string
	maxSize int64
}

// NewLocalStore cria um LocalStore com diretório base e tamanho máximo
func NewLocalStore(baseDir string, maxSize int64) *LocalStore {
	return &LocalStore{baseDir: baseDir, maxSize: maxSize}
}

// ValidateProof verifica extensão e tamanho do comprovante
func (s *LocalStore) ValidateProof(file *multipart.FileHeader) error {
	if file == nil {
		return registration.ErrPaymentProofRequired
	}
	if file.Size <= 0 || file.Size > s.maxSize {
		return registration.ErrInvalidPaymentProof
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return registration.ErrInvalidPaymentProof
	}
	return nil
}

// StoreProof grava o comprovante e retorna o caminho relativo armazenado.
// O nome do arquivo é um UUID para não vazar o nome original do envio.
func (s *LocalStore) StoreProof(eventID, userID string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("falha ao abrir comprovante: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.baseDir, eventID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório de comprovantes: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("falha ao criar arquivo de comprovante: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("falha ao gravar comprovante: %w", err)
	}

	return filepath.Join(eventID, name), nil
}

// RemoveProof apaga um comprovante gravado, dado o caminho relativo
// retornado por StoreProof. Usado quando a inscrição correspondente é
// recusada depois de o arquivo já estar no disco.
func (s *LocalStore) RemoveProof(path string) error {
	full := filepath.Join(s.baseDir, filepath.Clean(path))
	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("caminho de comprovante fora do diretório base: %s", path)
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("falha ao remover comprovante: %w", err)
	}
	return nil
}
