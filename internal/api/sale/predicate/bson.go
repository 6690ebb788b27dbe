package predicate

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToBSON render predicate thành filter MongoDB. Các điều kiện AND được gộp vào một document
// khi không trùng key, trùng key thì chuyển sang $and để không ghi đè nhau.
func ToBSON(p Predicate) bson.M {
	switch p.Op {
	case OpAll:
		return bson.M{}
	case OpAnd:
		return andBSON(p.Children)
	case OpOr:
		ors := make(bson.A, 0, len(p.Children))
		for _, c := range p.Children {
			ors = append(ors, ToBSON(c))
		}
		return bson.M{"$or": ors}
	case OpEq:
		return bson.M{p.Field: p.Value}
	case OpIn:
		return bson.M{p.Field: bson.M{"$in": bson.A(p.Values)}}
	case OpRange:
		cond := bson.M{}
		if p.Gte != nil {
			cond["$gte"] = p.Gte
		}
		if p.Lte != nil {
			cond["$lte"] = p.Lte
		}
		if p.Lt != nil {
			cond["$lt"] = p.Lt
		}
		return bson.M{p.Field: cond}
	case OpRegex:
		opts := ""
		if p.Fold {
			opts = "i"
		}
		return bson.M{p.Field: primitive.Regex{Pattern: p.Pattern, Options: opts}}
	}
	return bson.M{}
}

func andBSON(children []Predicate) bson.M {
	rendered := make([]bson.M, 0, len(children))
	merged := bson.M{}
	conflict := false
	for _, c := range children {
		m := ToBSON(c)
		rendered = append(rendered, m)
		for k, v := range m {
			if _, dup := merged[k]; dup {
				conflict = true
			}
			merged[k] = v
		}
	}
	if !conflict {
		return merged
	}
	all := make(bson.A, 0, len(rendered))
	for _, m := range rendered {
		all = append(all, m)
	}
	return bson.M{"$and": all}
}
