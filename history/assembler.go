package history

import "career-chat/models"

// Assemble maps stored messages to model turns, keeping their order.
// Stored "bot" messages become "model" turns; everything else is sent as "user".
func Assemble(messages []models.ChatMessage) []models.Turn {
	turns := make([]models.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, models.Turn{Role: turnRole(m.Role), Text: m.Content})
	}
	return turns
}

func turnRole(r models.Role) models.TurnRole {
	if r == models.RoleBot {
		return models.TurnRoleModel
	}
	return models.TurnRoleUser
}
