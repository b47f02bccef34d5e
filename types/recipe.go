package types

// MinInstructionsLength is the minimum number of characters a recipe's
// instructions must contain.
const MinInstructionsLength = 50

// Recipe is a set of cooking instructions owned by a single user.
type Recipe struct {
	// ID is the unique identifier of the recipe.
	ID int `json:"id" db:"id"`

	// Title is the human-readable name of the recipe.
	Title string `json:"title" db:"title"`

	// Instructions holds the preparation steps, at least
	// MinInstructionsLength characters long.
	Instructions string `json:"instructions" db:"instructions"`

	// MinutesToComplete is the expected preparation time. Zero is a valid value.
	MinutesToComplete int `json:"minutes_to_complete" db:"minutes_to_complete"`

	// UserID references the owning user. It always comes from the
	// authenticated session, never from client input.
	UserID int `json:"-" db:"user_id"`

	// User is the owner, populated by joined reads.
	User User `json:"user"`
}
