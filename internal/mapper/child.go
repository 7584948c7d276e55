package mapper

// Child registers a cascade binding for an owned child collection. Forward:
// every child element is mapped with its own mapper and the parent key is
// stamped onto the produced row. Reverse: every row is reconstructed with
// the child mapper and the resulting list attached to the aggregate.
//
// Rows fetched for several parents at once are grouped first; see GroupBy.
func Child[D, S, CD, CS any](m *Mapper[D, S], name string, child *Mapper[CD, CS],
	children func(*D) []CD, attach func(*D, []CD),
	rows func(*S) []CS, setRows func(*S, []CS),
	stamp func(parent *S, row *CS),
) *Mapper[D, S] {
	m.addResolver(name,
		func(d *D, s *S) error {
			src := children(d)
			if len(src) == 0 {
				setRows(s, nil)
				return nil
			}
			out := make([]CS, 0, len(src))
			for i := range src {
				row, err := child.ToStorage(&src[i])
				if err != nil {
					return err
				}
				stamp(s, &row)
				out = append(out, row)
			}
			setRows(s, out)
			return nil
		},
		func(s *S, d *D) error {
			src := rows(s)
			if len(src) == 0 {
				attach(d, nil)
				return nil
			}
			out := make([]CD, 0, len(src))
			for i := range src {
				c, err := child.ToDomain(&src[i])
				if err != nil {
					return err
				}
				out = append(out, c)
			}
			attach(d, out)
			return nil
		},
	)
	return m
}

// GroupBy buckets rows by a parent key, preserving the input order inside
// each bucket. Used to reassemble child rows fetched for a list of
// aggregates in one query.
func GroupBy[K comparable, R any](rows []R, key func(R) K) map[K][]R {
	out := make(map[K][]R)
	for _, r := range rows {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}
