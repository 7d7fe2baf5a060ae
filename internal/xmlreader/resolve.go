package xmlreader

import "github.com/ginjaninja78/fidji-converter/internal/model"

// resolveProperties replaces company placeholders with the assets read from
// the document.
//
// RULE:
//   Assets are taken in document order. Each asset goes to the first company,
//   in ascending company id order, that still holds a nil placeholder for the
//   asset's id; then the next asset is considered. A placeholder with no
//   matching asset stays nil.
//
// RETURNS:
//   - The number of placeholders resolved and left unresolved.
func (s *state) resolveProperties() (resolved, unresolved int) {
	// Index the companies waiting for each property id.
	waiting := make(map[string][]*model.Company)
	for _, cid := range model.SortedKeys(s.data.Companies) {
		c := s.data.Companies[cid]
		for _, pid := range model.SortedKeys(c.Properties) {
			if c.Properties[pid] == nil {
				waiting[pid] = append(waiting[pid], c)
				unresolved++
			}
		}
	}

	for _, p := range s.properties {
		queue := waiting[p.ObjectIDSender]
		if len(queue) == 0 {
			continue
		}
		queue[0].Properties[p.ObjectIDSender] = p
		waiting[p.ObjectIDSender] = queue[1:]
		resolved++
		unresolved--
	}

	return resolved, unresolved
}
