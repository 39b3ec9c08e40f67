package workflow

import "github.com/redlitmus-in/MeterSquare-sub008/internal/model"

type Classification string

const (
	// ClassificationNewMaterials means at least one line references a material
	// that is not yet in the catalog.
	ClassificationNewMaterials Classification = "contains_new_materials"
	// ClassificationExistingOnly means every line references a catalog
	// material. An empty line set classifies as existing-only.
	ClassificationExistingOnly Classification = "existing_materials_only"
)

// Classify inspects the whole line set; a single uncatalogued line is enough
// to classify the request as containing new materials.
func Classify(lines []model.MaterialLine) Classification {
	for _, line := range lines {
		if !line.Catalogued() {
			return ClassificationNewMaterials
		}
	}
	return ClassificationExistingOnly
}
