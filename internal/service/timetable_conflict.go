package service

import "github.com/kotkala/EduConnectSystem-sub009/internal/models"

// DetectConflict evaluates a slot claim against candidate events.
// Candidates outside the claimed slot and the event named by excludeID are ignored.
// A classroom clash anywhere in the slot wins over a teacher clash.
func DetectConflict(claim models.SlotClaim, candidates []models.TimetableEvent, excludeID string) models.ConflictCheckResult {
	relevant := make([]models.TimetableEvent, 0, len(candidates))
	for _, event := range candidates {
		if excludeID != "" && event.ID == excludeID {
			continue
		}
		if event.Slot() != claim.TimetableSlot {
			continue
		}
		relevant = append(relevant, event)
	}

	for i := range relevant {
		if relevant[i].ClassroomID == claim.ClassroomID {
			return conflictResult(models.ConflictDimensionClassroom, relevant[i])
		}
	}
	for i := range relevant {
		if relevant[i].TeacherID == claim.TeacherID {
			return conflictResult(models.ConflictDimensionTeacher, relevant[i])
		}
	}
	return models.ConflictCheckResult{}
}

func conflictResult(dimension string, event models.TimetableEvent) models.ConflictCheckResult {
	conflictType := models.ConflictTypeClassroom
	if dimension == models.ConflictDimensionTeacher {
		conflictType = models.ConflictTypeTeacher
	}
	return models.ConflictCheckResult{
		HasConflict:  true,
		ConflictType: conflictType,
		Dimension:    dimension,
		Conflict:     &event,
	}
}
