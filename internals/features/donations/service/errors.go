package service

import "errors"

/* =========================================================
   Taksonomi error inti (dipetakan ke HTTP status di controller)
========================================================= */

var (
	// Bentuk request salah (amount <= 0, field wajib kosong). Tidak di-retry.
	ErrInvalidArgument = errors.New("invalid argument")
	// Pot / donasi yang direferensikan tidak ada.
	ErrNotFound = errors.New("not found")
	// Pot bukan active — tidak menerima donasi baru.
	ErrInvalidState = errors.New("invalid state")
	// Signature webhook tidak cocok.
	ErrUnauthorized = errors.New("unauthorized")
	// Gateway tidak bisa dihubungi setelah retry; soft failure, caller boleh coba lagi.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// Body webhook tidak bisa diparse / field wajib hilang.
	ErrInvalidPayload = errors.New("invalid payload")
)
