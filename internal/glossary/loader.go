package glossary

import (
	"fmt"

	"lingo-load/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewResolverFromDB loads all glossary terms into an immutable in-memory
// snapshot. The table is read once at startup; later edits require a process
// restart or a management-triggered reload that swaps in a new Resolver.
func NewResolverFromDB(db *gorm.DB) (*Resolver, error) {
	var terms []models.GlossaryTerm
	if err := db.Order("id").Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load glossary terms: %w", err)
	}

	logrus.Infof("Loaded %d glossary terms", len(terms))
	return NewResolver(terms), nil
}
