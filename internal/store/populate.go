package store

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PopulateOne resolves a single-valued reference on every parent with one
// batched lookup. A reference to a missing record fails the whole call.
func PopulateOne[P, C any](
	ctx context.Context,
	parents []P,
	refs Collection[C],
	key func(P) primitive.ObjectID,
	assign func(*P, C),
) error {
	if len(parents) == 0 {
		return nil
	}

	ids := lo.Uniq(lo.Map(parents, func(p P, _ int) primitive.ObjectID { return key(p) }))
	found, err := refs.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for ix := range parents {
		parent := &parents[ix]
		id := key(*parent)
		child, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDanglingReference, id.Hex())
		}
		assign(parent, child)
	}
	return nil
}

// PopulateMany resolves a set-of-references field on every parent, keeping
// the order of the ids on each parent.
func PopulateMany[P, C any](
	ctx context.Context,
	parents []P,
	refs Collection[C],
	keys func(P) []primitive.ObjectID,
	assign func(*P, []C),
) error {
	if len(parents) == 0 {
		return nil
	}

	ids := lo.Uniq(lo.FlatMap(parents, func(p P, _ int) []primitive.ObjectID { return keys(p) }))
	found, err := refs.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for ix := range parents {
		parent := &parents[ix]
		refIDs := keys(*parent)
		children := make([]C, 0, len(refIDs))
		for _, id := range refIDs {
			child, ok := found[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrDanglingReference, id.Hex())
			}
			children = append(children, child)
		}
		assign(parent, children)
	}
	return nil
}
