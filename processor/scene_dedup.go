package processor

import "errors"

// DedupScenes keeps the least cloudy item for every distinct footprint.
// Missing cloud cover ranks as 100 %. Ties go to the earliest acquisition
// and then to the lowest ID. The survivors keep their input order and
// items is left untouched.
func DedupScenes(items []CatalogItem) ([]CatalogItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyStack
	}

	best := make(map[string]int, len(items))
	for idx, item := range items {
		key, err := FootprintKey(item.Footprint)
		if err != nil {
			var geomErr *InvalidGeometryError
			if errors.As(err, &geomErr) {
				return nil, invalidGeometry("item %s: %s", item.ID, geomErr.Reason)
			}
			return nil, err
		}

		if cur, found := best[key]; !found || preferScene(item, items[cur]) {
			best[key] = idx
		}
	}

	keep := make([]bool, len(items))
	for _, idx := range best {
		keep[idx] = true
	}

	out := make([]CatalogItem, 0, len(best))
	for idx, item := range items {
		if keep[idx] {
			out = append(out, item)
		}
	}
	return out, nil
}

// preferScene reports whether a should replace b as its group's pick.
func preferScene(a, b CatalogItem) bool {
	ac, bc := a.cloudCover(), b.cloudCover()
	if ac != bc {
		return ac < bc
	}
	if !a.Datetime.Equal(b.Datetime) {
		return a.Datetime.Before(b.Datetime)
	}
	return a.ID < b.ID
}
