package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/d120/tucan-export/models"
)

// Output file names within the semester directory.
const (
	BooksFile      = "books.csv"
	ModulesFile    = "modules.csv"
	CategoriesFile = "category.csv"
)

// Export writes the three relational CSV files consumed by the bulk
// import. Nothing is written before this point; the run either produces
// a complete export or none at all.
func Export(dir string, agg *Aggregator) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	if err := writeBooks(filepath.Join(dir, BooksFile), agg.Books()); err != nil {
		return err
	}
	if err := writeModules(filepath.Join(dir, ModulesFile), agg.Modules()); err != nil {
		return err
	}
	return writeCategories(filepath.Join(dir, CategoriesFile), agg.Categories())
}

func writeBooks(path string, books []*models.Book) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"isbn_13", "title", "author", "price", "publisher", "year"}); err != nil {
			return err
		}
		for _, b := range books {
			record := []string{
				b.ISBN,
				b.Title,
				b.Author,
				strconv.Itoa(b.Price),
				b.Publisher,
				b.Year,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeModules(path string, modules []*models.Module) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"books", "category__name_de", "module_id", "name_de", "name_en", "last_offered"}); err != nil {
			return err
		}
		for _, m := range modules {
			record := []string{
				strings.Join(m.Books, ", "),
				m.Category,
				m.CID,
				m.Name,
				m.NameEN,
				m.LastOffered,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCategories(path string, categories []string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"name_de"}); err != nil {
			return err
		}
		for _, c := range categories {
			if err := w.Write([]string{c}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
