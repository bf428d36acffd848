package textx

// Join concatenates words with a space.
func Join(words ...string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
