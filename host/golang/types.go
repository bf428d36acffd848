package golang

import (
	"go/types"
	"strings"

	"github.com/teranos/logifact/model"
)

// Namespace turns an import path into the dotted name facts are filed under:
// github.com/acme/shapes becomes github.com.acme.shapes.
func Namespace(importPath string) string {
	return strings.ReplaceAll(importPath, "/", ".")
}

// typeExpr maps a go/types type onto the model. Pointers are transparent,
// slices and arrays become arrays, and maps, channels and funcs become
// declared pseudo types carrying their component types as arguments.
func typeExpr(t types.Type) model.TypeExpr {
	switch v := t.(type) {
	case *types.Basic:
		if v.Kind() == types.UnsafePointer {
			return model.Ref("unsafe.Pointer")
		}
		return &model.Primitive{Kind: v.Name()}
	case *types.Pointer:
		return typeExpr(v.Elem())
	case *types.Slice:
		return &model.Array{Elem: typeExpr(v.Elem())}
	case *types.Array:
		return &model.Array{Elem: typeExpr(v.Elem())}
	case *types.Map:
		return model.Ref("map", typeExpr(v.Key()), typeExpr(v.Elem()))
	case *types.Chan:
		return model.Ref("chan", typeExpr(v.Elem()))
	case *types.Signature:
		var args []model.TypeExpr
		for i := 0; i < v.Params().Len(); i++ {
			args = append(args, typeExpr(v.Params().At(i).Type()))
		}
		for i := 0; i < v.Results().Len(); i++ {
			args = append(args, typeExpr(v.Results().At(i).Type()))
		}
		return model.Ref("func", args...)
	case *types.TypeParam:
		return &model.TypeVar{Name: v.Obj().Name()}
	case *types.Alias:
		return typeExpr(types.Unalias(v))
	case *types.Named:
		return named(v)
	case *types.Interface:
		if v.Empty() {
			return model.Ref("any")
		}
		return model.Ref("interface")
	case *types.Struct:
		return model.Ref("struct")
	}
	return &model.UnknownType{Description: t.String()}
}

func named(n *types.Named) model.TypeExpr {
	obj := n.Obj()
	name := obj.Name()
	if obj.Pkg() != nil {
		name = Namespace(obj.Pkg().Path()) + "." + name
	}
	var args []model.TypeExpr
	if targs := n.TypeArgs(); targs != nil {
		for i := 0; i < targs.Len(); i++ {
			args = append(args, typeExpr(targs.At(i)))
		}
	}
	return model.Ref(name, args...)
}

func typeParams(list *types.TypeParamList) []model.TypeParam {
	if list == nil {
		return nil
	}
	out := make([]model.TypeParam, list.Len())
	for i := 0; i < list.Len(); i++ {
		tp := list.At(i)
		out[i] = model.TypeParam{
			Name:   tp.Obj().Name(),
			Bounds: []model.TypeExpr{typeExpr(tp.Constraint())},
		}
	}
	return out
}

var errorType = types.Universe.Lookup("error").Type()

func isError(t types.Type) bool {
	return types.Identical(t, errorType)
}
