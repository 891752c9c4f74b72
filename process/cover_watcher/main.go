// Command cover_watcher watches a drop directory for book cover images.
// Files are named after the book's barcode or ISBN (e.g. B-2026-0042.jpg);
// each one is normalized into the cover directory and attached to the
// matching book. Useful for bulk-loading covers from a scanner batch.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"perpusku/models"
	"perpusku/pkg/covers"
)

var verbose bool

func main() {
	var dir, out string
	flag.StringVar(&dir, "dir", "cover_drop", "directory to watch for cover images")
	flag.StringVar(&out, "out", "covers", "directory for processed covers")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	db, err := openDB()
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create watch dir: %v", err)
	}

	// Pick up anything already sitting in the drop dir before watching.
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("failed to read watch dir: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() && covers.IsSupported(e.Name()) {
			processFile(db, filepath.Join(dir, e.Name()), out)
		}
	}

	if err := watch(db, dir, out); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func openDB() (*gorm.DB, error) {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "library.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

func watch(db *gorm.DB, dir, out string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// Debounce so half-written files settle before processing.
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && covers.IsSupported(ev.Name) {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		case <-ticker.C:
			for path, seen := range pending {
				if time.Since(seen) < 500*time.Millisecond {
					continue
				}
				delete(pending, path)
				processFile(db, path, out)
			}
		}
	}
}

// processFile attaches one dropped image to the book whose barcode or ISBN
// matches the file's base name. Unmatched files are left in place so the
// operator can rename them.
func processFile(db *gorm.DB, path, out string) {
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var book models.Book
	err := db.Where("(barcode = ? OR isbn = ?) AND deleted_at IS NULL", key, key).
		Order("id ASC").First(&book).Error
	if err != nil {
		log.Printf("no book matches %q, skipping", key)
		return
	}
	name, err := covers.Process(path, out)
	if err != nil {
		log.Printf("failed to process %s: %v", path, err)
		return
	}
	cover := filepath.ToSlash(filepath.Join(out, name))
	if err := db.Model(&models.Book{}).Where("id = ?", book.ID).Update("cover", cover).Error; err != nil {
		log.Printf("failed to update cover for book %d: %v", book.ID, err)
		return
	}
	if err := os.Remove(path); err != nil {
		log.Printf("failed to remove %s: %v", path, err)
	}
	if verbose {
		log.Printf("attached %s to book %d (%s)", cover, book.ID, book.Title)
	}
}
