package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2: geometric validation
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePositiveDimensions(g)...)
	warnings = append(warnings, validateLeafPrimitives(g)...)

	return errs, warnings
}

// positive appends an error when v is not a positive number.
func positive(errs []ValidationError, id NodeID, what string, v float64) []ValidationError {
	if v > 0 {
		return errs
	}
	return append(errs, ValidationError{
		NodeID:   id,
		Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
		Severity: SeverityError,
	})
}

// validatePositiveDimensions checks that every primitive has positive size.
// A zero-sized part tessellates to nothing and can never be picked.
func validatePositiveDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoardData:
			errs = positive(errs, node.ID, "board dimension X", d.Dimensions.X)
			errs = positive(errs, node.ID, "board dimension Y", d.Dimensions.Y)
			errs = positive(errs, node.ID, "board dimension Z", d.Dimensions.Z)
		case DowelData:
			errs = positive(errs, node.ID, "dowel diameter", d.Diameter)
			errs = positive(errs, node.ID, "dowel length", d.Length)
		case BallData:
			errs = positive(errs, node.ID, "ball diameter", d.Diameter)
		}
	}

	return errs
}

// validateLeafPrimitives warns about primitives that list children; the
// children are ignored when the design is tessellated.
func validateLeafPrimitives(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		if node.Kind == NodePrimitive && len(node.Children) > 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("primitive %q has %d children; they are ignored", node.Label(), len(node.Children)),
			})
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: material warnings
// ---------------------------------------------------------------------------

// validateMaterial runs all Tier 3 material advisory checks.
func validateMaterial(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateBoardGrain(g)...)
	return warnings
}

// longestAxis returns the axis of the largest component of v.
func longestAxis(v Vec3) Axis {
	switch {
	case v.X >= v.Y && v.X >= v.Z:
		return AxisX
	case v.Y >= v.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// validateBoardGrain warns when a board's grain does not run along its
// longest dimension. Cross-grain boards are weak and move seasonally.
func validateBoardGrain(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		bd, ok := node.Data.(BoardData)
		if !ok {
			continue
		}
		if longest := longestAxis(bd.Dimensions); bd.Grain != longest {
			warnings = append(warnings, ValidationWarning{
				NodeID: node.ID,
				Message: fmt.Sprintf("board %q has grain along %s but its longest dimension is %s",
					node.Label(), bd.Grain, longest),
			})
		}
	}

	return warnings
}
