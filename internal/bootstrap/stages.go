package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/constants"
	"github.com/crewhq/backend/pkg/utils"
)

type seedScope struct {
	workflowType string
	subtype      string
	stages       []string
}

// Default stage catalogs. Onboarding varies by employment classification,
// hiring by category.
var seedScopes = []seedScope{
	{constants.WorkflowOnboarding, constants.ClassificationW2, []string{
		"Offer Letter Signed",
		"W-4 & I-9 Forms",
		"Direct Deposit Setup",
		"Equipment Issued",
		"Safety Orientation",
	}},
	{constants.WorkflowOnboarding, constants.Classification1099, []string{
		"Contractor Agreement Signed",
		"W-9 Form",
		"Insurance Certificate on File",
		"Safety Orientation",
	}},
	{constants.WorkflowHiringPipeline, constants.HiringCategoryInsurance, []string{
		"Application Review",
		"Phone Screen",
		"License Verification",
		"Manager Interview",
		"Offer Extended",
	}},
	{constants.WorkflowHiringPipeline, constants.HiringCategoryRetail, []string{
		"Application Review",
		"Phone Screen",
		"In-Store Interview",
		"Offer Extended",
	}},
	{constants.WorkflowHiringPipeline, constants.HiringCategoryOffice, []string{
		"Application Review",
		"Phone Screen",
		"Panel Interview",
		"Reference Check",
		"Offer Extended",
	}},
	{constants.WorkflowHiringPipeline, constants.HiringCategoryProduction, []string{
		"Application Review",
		"Skills Assessment",
		"Site Interview",
		"Offer Extended",
	}},
}

// SeedStageCatalogs inserts the default stage sequences. A scope that already
// has stages is left untouched, so reruns and operator edits both survive.
func SeedStageCatalogs(stages ports.StageStore) error {
	ctx := context.Background()
	now := time.Now().UTC()
	seeded := 0

	for _, scope := range seedScopes {
		existing, err := stages.StagesFor(ctx, scope.workflowType, scope.subtype)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		for i, name := range scope.stages {
			stage := &models.StageDefinition{
				ID:           utils.GenerateID(),
				WorkflowType: scope.workflowType,
				Subtype:      scope.subtype,
				Name:         name,
				Ordinal:      i + 1,
				IsActive:     true,
				CreatedDate:  now,
			}
			if err := stages.Insert(ctx, stage); err != nil {
				return err
			}
			seeded++
		}
	}

	if seeded > 0 {
		log.Printf("✅ Seeded %d default stages", seeded)
	}
	return nil
}
