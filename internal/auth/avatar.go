package auth

import "math/rand/v2"

var avatarEmojis = []string{
	"🦊", "🐸", "🐙", "🦉", "🐥", "🐢", "🦄", "🐝", "🦀", "🐬",
	"🐨", "🦁", "🐼", "🐞", "🦕", "🐳", "🦜", "🐺", "🦔", "🐌",
}

var avatarColors = []string{
	"#F94144", "#F3722C", "#F8961E", "#F9C74F", "#90BE6D",
	"#43AA8B", "#4D908E", "#577590", "#277DA1", "#9B5DE5",
}

// randomAvatar picks an emoji and background color for a new account.
func randomAvatar() (emoji, color string) {
	return avatarEmojis[rand.IntN(len(avatarEmojis))],
		avatarColors[rand.IntN(len(avatarColors))]
}
