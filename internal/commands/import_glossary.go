// Package commands implements the CLI subcommands.
package commands

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"lingo-load/internal/config"
	"lingo-load/internal/db"
	"lingo-load/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// RunImportGlossary imports glossary terms from a CSV file with
// source_term,target_term,scope rows. Existing rows with the same
// source/target/scope triple are skipped.
func RunImportGlossary(args []string) {
	fs := flag.NewFlagSet("import-glossary", flag.ExitOnError)
	file := fs.String("file", "", "path to the CSV file (source_term,target_term,scope)")
	fs.Usage = func() {
		fmt.Println("Usage: lingo-load import-glossary -file <path>")
		fmt.Println()
		fmt.Println("Imports glossary terms from a CSV file. Each row holds")
		fmt.Println("source_term,target_term,scope where scope is one of")
		fmt.Println("tenant:<id>, channel:<id>, or user:<id>.")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *file == "" {
		fs.Usage()
		os.Exit(1)
	}

	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.NewDB(configManager)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		logrus.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	imported, skipped, line := 0, 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logrus.Fatalf("Failed to parse CSV at line %d: %v", line, err)
		}

		term := models.GlossaryTerm{
			SourceTerm: strings.TrimSpace(record[0]),
			TargetTerm: strings.TrimSpace(record[1]),
			Scope:      strings.TrimSpace(record[2]),
		}
		if term.SourceTerm == "" || term.TargetTerm == "" || !validScope(term.Scope) {
			logrus.Warnf("Skipping invalid row at line %d: %v", line, record)
			skipped++
			continue
		}

		result := database.Clauses(clause.OnConflict{DoNothing: true}).Create(&term)
		if result.Error != nil {
			logrus.Fatalf("Failed to insert term %q at line %d: %v", term.SourceTerm, line, result.Error)
		}
		if result.RowsAffected == 0 {
			skipped++
		} else {
			imported++
		}
	}

	logrus.Infof("Glossary import finished: %d imported, %d skipped", imported, skipped)
}

func validScope(scope string) bool {
	for _, prefix := range []string{"tenant:", "channel:", "user:"} {
		if strings.HasPrefix(scope, prefix) && len(scope) > len(prefix) {
			return true
		}
	}
	return false
}
