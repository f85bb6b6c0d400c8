package catalog

import "sort"

// SortByRating orders songs by average rating, highest first. Equal ratings
// keep their relative order.
func SortByRating(songs []Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].Rating > songs[j].Rating
	})
}
