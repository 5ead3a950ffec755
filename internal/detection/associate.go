package detection

// Candidate is a PPE item associated with a person.
type Candidate struct {
	Confidence float64
	Area       float64
}

// Associate maps every PPE type overlapping the person box to its best
// candidate. Any positive intersection area associates an item; when several
// candidates of the same type overlap the person, the highest-confidence one
// wins. An item overlapping two persons is associated with both.
func Associate(personBox PixelBox, detections []RawDetection) map[PPEType]Candidate {
	associated := make(map[PPEType]Candidate)

	for _, d := range detections {
		if d.ClassID == personClassID {
			continue
		}

		ppeType, ok := classTaxonomy[d.ClassID]
		if !ok {
			continue
		}

		if personBox.IntersectionArea(d.Box) <= 0 {
			continue
		}

		if existing, ok := associated[ppeType]; ok && d.Confidence <= existing.Confidence {
			continue
		}
		associated[ppeType] = Candidate{
			Confidence: d.Confidence,
			Area:       d.Box.Area(),
		}
	}

	return associated
}
