package registration

import "errors"

// Erros do domínio de inscrição
var (
	ErrRegistrationNotFound   = errors.New("inscrição não encontrada")
	ErrAlreadyRegistered      = errors.New("o usuário já está inscrito neste evento")
	ErrNotPaid                = errors.New("a presença exige pagamento confirmado")
	ErrAlreadyPresent         = errors.New("a presença já foi registrada")
	ErrRegistrationConcluded  = errors.New("a inscrição já teve presença registrada e não pode mais ser alterada")
	ErrRegistrationInProgress = errors.New("a inscrição deste usuário já está em processamento")
	ErrPaymentProofRequired   = errors.New("evento pago exige comprovante de pagamento")
	ErrInvalidPaymentProof    = errors.New("comprovante de pagamento inválido")
	ErrEventIDRequired        = errors.New("o ID do evento é obrigatório")
	ErrUserIDRequired         = errors.New("o ID do usuário é obrigatório")
)
