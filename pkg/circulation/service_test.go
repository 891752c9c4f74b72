package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpusku/models"
)

func seedBook(t *testing.T, svc *Service, copies int) *models.Book {
	t.Helper()
	book := models.Book{Title: "Laskar Pelangi", Author: "Andrea Hirata", ISBN: "9789793062792", TotalCopy: copies}
	require.NoError(t, svc.CreateBook(&book))
	return &book
}

func seedMember(t *testing.T, svc *Service) *models.Member {
	t.Helper()
	member := models.Member{Name: "Siti Rahma"}
	require.NoError(t, svc.CreateMember(&member))
	return &member
}

func reloadBook(t *testing.T, svc *Service, id uint) models.Book {
	t.Helper()
	var book models.Book
	require.NoError(t, svc.db.First(&book, id).Error)
	return book
}

func TestCreateBook(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)

	book := seedBook(t, svc, 3)
	assert.Equal(t, 3, book.AvailableCopy)
	assert.Equal(t, models.BookStatusAvailable, book.Status)
	assert.Equal(t, Barcode(2024, book.ID), book.Barcode)

	stored := reloadBook(t, svc, book.ID)
	assert.Equal(t, book.Barcode, stored.Barcode)
}

func TestBorrowLifecycle(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 2)
	member := seedMember(t, svc)

	// First borrow takes one copy.
	loan1, err := svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)
	stored := reloadBook(t, svc, book.ID)
	assert.Equal(t, 1, stored.AvailableCopy)
	assert.Equal(t, models.BookStatusAvailable, stored.Status)

	// Second borrow empties the shelf and flips the status.
	_, err = svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)
	stored = reloadBook(t, svc, book.ID)
	assert.Equal(t, 0, stored.AvailableCopy)
	assert.Equal(t, models.BookStatusBorrowed, stored.Status)

	// Third borrow fails and changes nothing.
	_, err = svc.Borrow(book.ID, member.ID, 7)
	assert.ErrorIs(t, err, ErrOutOfStock)
	stored = reloadBook(t, svc, book.ID)
	assert.Equal(t, 0, stored.AvailableCopy)
	var loanCount int64
	require.NoError(t, svc.db.Model(&models.Loan{}).Count(&loanCount).Error)
	assert.EqualValues(t, 2, loanCount)

	// Returning brings a copy back and clears the status.
	require.NoError(t, svc.Return(loan1))
	stored = reloadBook(t, svc, book.ID)
	assert.Equal(t, 1, stored.AvailableCopy)
	assert.Equal(t, models.BookStatusAvailable, stored.Status)

	var loan models.Loan
	require.NoError(t, svc.db.First(&loan, loan1).Error)
	assert.Equal(t, models.LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.EqualValues(t, 0, loan.FineAmount)
}

func TestBorrowValidations(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 1)
	member := seedMember(t, svc)

	t.Run("non-positive days", func(t *testing.T) {
		_, err := svc.Borrow(book.ID, member.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidLoanDays)
		_, err = svc.Borrow(book.ID, member.ID, -3)
		assert.ErrorIs(t, err, ErrInvalidLoanDays)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := svc.Borrow(9999, member.ID, 7)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.Borrow(book.ID, 9999, 7)
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("inactive member", func(t *testing.T) {
		require.NoError(t, svc.DeactivateMember(member.ID))
		_, err := svc.Borrow(book.ID, member.ID, 7)
		assert.ErrorIs(t, err, ErrMemberInactive)
		// Reactivate for the remaining cases.
		require.NoError(t, svc.db.Model(&models.Member{}).Where("id = ?", member.ID).
			Update("status", models.MemberStatusActive).Error)
	})

	t.Run("soft-deleted book", func(t *testing.T) {
		gone := seedBook(t, svc, 1)
		require.NoError(t, svc.DeleteBook(gone.ID))
		_, err := svc.Borrow(gone.ID, member.ID, 7)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("due date is loan date plus days", func(t *testing.T) {
		loanID, err := svc.Borrow(book.ID, member.ID, 14)
		require.NoError(t, err)
		var loan models.Loan
		require.NoError(t, svc.db.First(&loan, loanID).Error)
		assert.True(t, loan.DueDate.Equal(at.AddDate(0, 0, 14)))
	})
}

func TestReturnIdempotence(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 1)
	member := seedMember(t, svc)

	loanID, err := svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Return(loanID))

	err = svc.Return(loanID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	// The failed second return must not increment the count again.
	stored := reloadBook(t, svc, book.ID)
	assert.Equal(t, 1, stored.AvailableCopy)
}

func TestReturnUnknownLoan(t *testing.T) {
	svc := newTestService(t, time.Now())
	assert.ErrorIs(t, svc.Return(12345), ErrLoanNotFound)
}

func TestReturnLateWritesFine(t *testing.T) {
	loanedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, loanedAt)
	book := seedBook(t, svc, 1)
	member := seedMember(t, svc)

	loanID, err := svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)

	// Ten days after a seven-day loan: three days late.
	svc.now = func() time.Time { return loanedAt.AddDate(0, 0, 10) }
	require.NoError(t, svc.Return(loanID))

	var loan models.Loan
	require.NoError(t, svc.db.First(&loan, loanID).Error)
	assert.EqualValues(t, 3000, loan.FineAmount)

	var entry models.Fine
	require.NoError(t, svc.db.Where("loan_id = ?", loanID).First(&entry).Error)
	assert.EqualValues(t, 3000, entry.Amount)
	assert.Equal(t, models.FineTypeOverdue, entry.Type)
	assert.Equal(t, models.FineStatusUnpaid, entry.Status)
}

func TestReturnOverwritesManualStatus(t *testing.T) {
	// The release path forces Tersedia even over a manual Tidak Tersedia.
	// Long-standing source behavior, kept as-is.
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 2)
	member := seedMember(t, svc)

	loanID, err := svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&models.Book{}).Where("id = ?", book.ID).
		Update("status", models.BookStatusUnavailable).Error)

	require.NoError(t, svc.Return(loanID))
	stored := reloadBook(t, svc, book.ID)
	assert.Equal(t, models.BookStatusAvailable, stored.Status)
}

func TestDeleteBook(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 1)
	member := seedMember(t, svc)

	loanID, err := svc.Borrow(book.ID, member.ID, 7)
	require.NoError(t, err)

	err = svc.DeleteBook(book.ID)
	assert.ErrorIs(t, err, ErrBookHasActiveLoans)
	stored := reloadBook(t, svc, book.ID)
	assert.Nil(t, stored.DeletedAt)

	require.NoError(t, svc.Return(loanID))
	require.NoError(t, svc.DeleteBook(book.ID))
	stored = reloadBook(t, svc, book.ID)
	assert.NotNil(t, stored.DeletedAt)

	// Deleting twice reports not found: the first delete removed it from
	// every active view.
	assert.ErrorIs(t, svc.DeleteBook(book.ID), ErrBookNotFound)
}

func TestAvailableCopyNeverExceedsTotal(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, at)
	book := seedBook(t, svc, 2)
	member := seedMember(t, svc)

	for i := 0; i < 3; i++ {
		loanID, err := svc.Borrow(book.ID, member.ID, 7)
		require.NoError(t, err)
		require.NoError(t, svc.Return(loanID))
		stored := reloadBook(t, svc, book.ID)
		assert.GreaterOrEqual(t, stored.AvailableCopy, 0)
		assert.LessOrEqual(t, stored.AvailableCopy, stored.TotalCopy)
	}
}
