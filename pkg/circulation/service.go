// Package circulation owns the loan lifecycle and book inventory
// consistency: borrowing, returning, fine computation, soft deletion and
// the year-scoped identifier schemes. Every multi-statement change runs in
// a single transaction on the handle passed in, so partial failure never
// leaves copy counts and loan rows out of step.
package circulation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"perpusku/models"
)

// Service executes circulation operations against one shared DB handle. It
// keeps no state of its own; the database is the only source of truth.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Borrow creates a loan for one copy of bookID to memberID for the given
// number of days and decrements the book's available count, all in one
// transaction. It returns the new loan id.
func (s *Service) Borrow(bookID, memberID uint, days int) (uint, error) {
	if days <= 0 {
		return 0, ErrInvalidLoanDays
	}
	var loanID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Where("id = ? AND deleted_at IS NULL", bookID).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("load book: %w", err)
		}
		if book.AvailableCopy <= 0 {
			return ErrOutOfStock
		}

		var member models.Member
		if err := tx.Select("id", "status").First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("load member: %w", err)
		}
		if member.Status == models.MemberStatusInactive {
			return ErrMemberInactive
		}

		loanDate := s.now()
		loan := models.Loan{
			BookID:   bookID,
			MemberID: memberID,
			LoanDate: loanDate,
			DueDate:  loanDate.AddDate(0, 0, days),
			Status:   models.LoanStatusBorrowed,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		if err := acquireCopy(tx, bookID); err != nil {
			return err
		}
		loanID = loan.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

// Return closes a borrowed loan: records the return date and the overdue
// fine, writes a fine ledger entry when the amount is positive, and puts
// the copy back in circulation. Returning an already-returned loan fails
// with ErrAlreadyReturned and changes nothing.
func (s *Service) Return(loanID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("load loan: %w", err)
		}
		if loan.Status == models.LoanStatusReturned {
			return ErrAlreadyReturned
		}

		returnDate := s.now()
		fine := OverdueFine(loan.DueDate, returnDate)
		updates := map[string]interface{}{
			"return_date": returnDate,
			"status":      models.LoanStatusReturned,
			"fine_amount": fine,
		}
		if err := tx.Model(&models.Loan{}).Where("id = ?", loan.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
		if fine > 0 {
			entry := models.Fine{
				LoanID: loan.ID,
				Amount: fine,
				Type:   models.FineTypeOverdue,
				Status: models.FineStatusUnpaid,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("create fine entry: %w", err)
			}
		}
		return releaseCopy(tx, loan.BookID)
	})
}

// acquireCopy takes one copy out of circulation. The decrement is a single
// conditional UPDATE so the store itself rejects a decrement below zero:
// zero affected rows means a concurrent borrow got the last copy first.
func acquireCopy(tx *gorm.DB, bookID uint) error {
	res := tx.Model(&models.Book{}).
		Where("id = ? AND deleted_at IS NULL AND available_copy > 0", bookID).
		Updates(map[string]interface{}{
			"available_copy": gorm.Expr("available_copy - 1"),
			"status":         gorm.Expr("CASE WHEN available_copy - 1 = 0 THEN ? ELSE status END", models.BookStatusBorrowed),
		})
	if res.Error != nil {
		return fmt.Errorf("acquire copy: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}

// releaseCopy puts one copy back and forces the status to Tersedia, even if
// the book had been manually marked Tidak Tersedia in the meantime. That
// overwrite matches the source system's long-standing behavior.
func releaseCopy(tx *gorm.DB, bookID uint) error {
	res := tx.Model(&models.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]interface{}{
			"available_copy": gorm.Expr("available_copy + 1"),
			"status":         models.BookStatusAvailable,
		})
	if res.Error != nil {
		return fmt.Errorf("release copy: %w", res.Error)
	}
	return nil
}

// CreateBook inserts a new title and assigns its immutable barcode from the
// generated row id, in one transaction. Available copies start equal to
// total copies.
func (s *Service) CreateBook(book *models.Book) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		book.AvailableCopy = book.TotalCopy
		if book.Status == "" {
			book.Status = models.BookStatusAvailable
		}
		if err := tx.Create(book).Error; err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		book.Barcode = Barcode(s.now().Year(), book.ID)
		if err := tx.Model(&models.Book{}).Where("id = ?", book.ID).Update("barcode", book.Barcode).Error; err != nil {
			return fmt.Errorf("assign barcode: %w", err)
		}
		return nil
	})
}

// DeleteBook soft-deletes a title. Blocked while any copy is still out.
func (s *Service) DeleteBook(bookID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Where("id = ? AND deleted_at IS NULL", bookID).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("load book: %w", err)
		}
		var active int64
		if err := tx.Model(&models.Loan{}).
			Where("book_id = ? AND status = ?", bookID, models.LoanStatusBorrowed).
			Count(&active).Error; err != nil {
			return fmt.Errorf("count active loans: %w", err)
		}
		if active > 0 {
			return ErrBookHasActiveLoans
		}
		if err := tx.Model(&models.Book{}).Where("id = ?", bookID).Update("deleted_at", s.now()).Error; err != nil {
			return fmt.Errorf("soft delete book: %w", err)
		}
		return nil
	})
}

// CreateMember inserts a member, generating the next year-scoped member
// code when none was supplied.
func (s *Service) CreateMember(member *models.Member) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if strings.TrimSpace(member.MemberCode) == "" {
			code, err := generateMemberCode(tx, s.now())
			if err != nil {
				return err
			}
			member.MemberCode = code
		}
		if member.Status == "" {
			member.Status = models.MemberStatusActive
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		return nil
	})
}

// DeactivateMember is the member "delete": the row stays, its status flips
// to Nonaktif so borrowing is blocked but loan history keeps referring to
// it.
func (s *Service) DeactivateMember(memberID uint) error {
	res := s.db.Model(&models.Member{}).
		Where("id = ?", memberID).
		Update("status", models.MemberStatusInactive)
	if res.Error != nil {
		return fmt.Errorf("deactivate member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
