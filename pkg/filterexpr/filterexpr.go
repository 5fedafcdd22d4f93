// Package filterexpr binds AIP-160 style filter and order_by strings onto
// query parameter structs. Filters are parsed with CEL; only conjunctions of
// atomic comparisons against whitelisted fields are accepted, so a filter can
// never express anything the repository cannot translate to indexed SQL.
package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg is any request carrying raw filter and order_by inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// Kind describes the literal type a filter field accepts.
type Kind string

const (
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindTimestamp Kind = "timestamp"
)

// Op is a comparison operator a field may whitelist.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpIN  Op = "in"
)

// Field maps a filter identifier to params struct fields, one per allowed
// operator.
type Field struct {
	Kind Kind
	Ops  map[Op]string
}

// Schema whitelists the filterable fields and orderable keys of a resource.
type Schema struct {
	Fields map[string]Field
	Order  OrderSchema
}

// Bind parses msg's filter and order_by against the schema and assigns the
// extracted values onto params, which must be a pointer to a struct.
func Bind(msg Msg, params any, schema Schema) error {
	dest, err := structValue(params)
	if err != nil {
		return err
	}
	if err := bindFilter(dest, msg.GetFilter(), schema.Fields); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := bindOrder(dest, msg.GetOrderBy(), schema.Order); err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return nil
}

func structValue(params any) (reflect.Value, error) {
	rv := reflect.ValueOf(params)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, errors.New("params must be a non-nil pointer")
	}
	dest := rv.Elem()
	if dest.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("params must point to a struct")
	}
	return dest, nil
}

func bindFilter(dest reflect.Value, filter string, fields map[string]Field) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("no filterable fields defined")
	}

	env, err := filterEnv(fields)
	if err != nil {
		return err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid expression: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return err
	}

	conjuncts, err := flattenAnd(parsed.GetExpr())
	if err != nil {
		return err
	}
	for _, expr := range conjuncts {
		pred, err := atomic(expr)
		if err != nil {
			return err
		}
		rule, ok := fields[pred.field]
		if !ok {
			return fmt.Errorf("field %q is not filterable", pred.field)
		}
		target, ok := rule.Ops[pred.op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(pred.op), pred.field)
		}
		if err := checkKind(rule.Kind, pred.op, pred.value); err != nil {
			return fmt.Errorf("field %q: %w", pred.field, err)
		}
		if err := assign(dest, target, pred.value); err != nil {
			return err
		}
	}
	return nil
}

func filterEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		var celType *cel.Type
		switch rule.Kind {
		case KindString:
			celType = cel.StringType
		case KindNumber:
			celType = cel.DoubleType
		case KindTimestamp:
			celType = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unsupported kind %s", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

type predicate struct {
	field string
	op    Op
	value any
}

// flattenAnd unfolds nested AND chains into a flat conjunct list. Any other
// logical operator is rejected.
func flattenAnd(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}
	switch call.Function {
	case "_&&_":
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			nested, err := flattenAnd(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("only AND conjunctions are supported, got %q", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func atomic(expr *exprpb.Expr) (predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("expected a comparison")
	}
	switch call.Function {
	case "_==_":
		return comparison(call, OpEQ)
	case "_>=_":
		return comparison(call, OpGTE)
	case "_<=_":
		return comparison(call, OpLTE)
	case "_in_", "@in":
		return inPredicate(call)
	default:
		return predicate{}, fmt.Errorf("operator %q is not supported", call.Function)
	}
}

func comparison(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	field, err := identName(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := literal(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{field: field, op: op, value: value}, nil
}

func inPredicate(call *exprpb.Expr_Call) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, errors.New("in expects a field and a list literal")
	}
	field, err := identName(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := literal(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	if _, ok := value.([]string); !ok {
		return predicate{}, errors.New("in requires a list of string literals")
	}
	return predicate{field: field, op: OpIN, value: value}, nil
}

func identName(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("left-hand side must be a field name")
	}
	return ident.GetName(), nil
}

func literal(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("unsupported literal %T", constant.ConstantKind)
		}
	}
	if list := expr.GetListExpr(); list != nil {
		values := make([]string, 0, len(list.GetElements()))
		for _, elem := range list.GetElements() {
			v, err := literal(elem)
			if err != nil {
				return nil, err
			}
			s, ok := v.(string)
			if !ok {
				return nil, errors.New("list elements must be string literals")
			}
			values = append(values, s)
		}
		return values, nil
	}
	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" {
		return timestampLiteral(call)
	}
	return nil, errors.New("right-hand side must be a literal, list, or timestamp()")
}

func timestampLiteral(call *exprpb.Expr_Call) (any, error) {
	if call.Target != nil || len(call.Args) != 1 {
		return nil, errors.New("timestamp() expects one string argument")
	}
	arg := call.Args[0].GetConstExpr()
	if arg == nil {
		return nil, errors.New("timestamp() argument must be a string literal")
	}
	t, err := time.Parse(time.RFC3339Nano, arg.GetStringValue())
	if err != nil {
		t, err = time.Parse(time.RFC3339, arg.GetStringValue())
	}
	if err != nil {
		return nil, fmt.Errorf("timestamp %q is not RFC3339", arg.GetStringValue())
	}
	return t, nil
}

func checkKind(kind Kind, op Op, value any) error {
	if op == OpIN {
		if kind != KindString {
			return errors.New("in is only supported for string fields")
		}
		return nil
	}
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return errors.New("expected a string literal")
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return errors.New("expected a numeric literal")
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return errors.New("expected a timestamp() literal")
		}
	}
	return nil
}

func assign(dest reflect.Value, name string, value any) error {
	field := dest.FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("params struct %s has no settable field %q", dest.Type(), name)
	}
	rv := reflect.ValueOf(value)
	switch field.Kind() {
	case reflect.Ptr:
		elem := field.Type().Elem()
		if !rv.Type().ConvertibleTo(elem) {
			return fmt.Errorf("field %q wants %s, got %s", name, elem, rv.Type())
		}
		if field.IsNil() {
			field.Set(reflect.New(elem))
		}
		field.Elem().Set(rv.Convert(elem))
	default:
		if !rv.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("field %q wants %s, got %s", name, field.Type(), rv.Type())
		}
		field.Set(rv.Convert(field.Type()))
	}
	return nil
}
