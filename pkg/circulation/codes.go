package circulation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"perpusku/models"
)

const memberCodePrefix = "MBR"

// Barcode formats a book barcode from the creation year and the book's row
// id, e.g. B-2026-0042.
func Barcode(year int, id uint) string {
	return fmt.Sprintf("B-%d-%04d", year, id)
}

// GenerateMemberCode produces the next sequential member code for the
// current calendar year, e.g. MBR-2026-0001.
func (s *Service) GenerateMemberCode() (string, error) {
	return generateMemberCode(s.db, s.now())
}

func generateMemberCode(db *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	var codes []string
	err := db.Model(&models.Member{}).
		Where("member_code LIKE ?", fmt.Sprintf("%s-%d%%", memberCodePrefix, year)).
		Order("member_code DESC").
		Limit(1).
		Pluck("member_code", &codes).Error
	if err != nil {
		return "", fmt.Errorf("query last member code: %w", err)
	}
	next := 1
	if len(codes) > 0 {
		next = nextSequence(codes[0])
	}
	return fmt.Sprintf("%s-%d-%04d", memberCodePrefix, year, next), nil
}

// nextSequence parses the numeric suffix of the latest code. Malformed
// codes (hand-entered, wrong segment count) fall back to 1 so callers
// always receive a usable code.
func nextSequence(last string) int {
	parts := strings.Split(last, "-")
	if len(parts) != 3 {
		return 1
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 1
	}
	return n + 1
}
