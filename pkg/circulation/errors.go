package circulation

import "errors"

// Error conditions surfaced by circulation operations. The messages are the
// operator-facing strings shown by the desktop client, so each condition
// keeps its own distinct text.
var (
	ErrBookNotFound       = errors.New("Buku tidak ditemukan")
	ErrOutOfStock         = errors.New("Stok buku habis")
	ErrBookUnavailable    = errors.New("Buku sedang tidak tersedia (Non-Aktif)")
	ErrBookHasActiveLoans = errors.New("Buku masih sedang dipinjam")
	ErrMemberNotFound     = errors.New("Member tidak ditemukan")
	ErrMemberInactive     = errors.New("Anggota berstatus Nonaktif tidak dapat meminjam buku")
	ErrLoanNotFound       = errors.New("Loan record not found")
	ErrAlreadyReturned    = errors.New("Book already returned")
	ErrInvalidLoanDays    = errors.New("Lama peminjaman harus lebih dari 0 hari")
)
