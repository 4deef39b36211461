package wizard

import (
	"strconv"
	"strings"
)

// FieldKey names one wizard field.
type FieldKey string

// Well-known field keys.
const (
	FieldClusterName       FieldKey = "clusterName"
	FieldNamespace         FieldKey = "namespace"
	FieldProvider          FieldKey = "provider"
	FieldRegion            FieldKey = "region"
	FieldAccessKeyID       FieldKey = "accessKeyId"
	FieldSecretAccessKey   FieldKey = "secretAccessKey"
	FieldSessionToken      FieldKey = "sessionToken"
	FieldFlavor            FieldKey = "flavor"
	FieldKubernetesVersion FieldKey = "kubernetesVersion"
	FieldSSHKey            FieldKey = "sshKey"
	FieldReplicas          FieldKey = "replicas"
	FieldMachineType       FieldKey = "machineType"
	FieldVCPU              FieldKey = "vcpu"
	FieldMemory            FieldKey = "memory"
	FieldInfraNode         FieldKey = "infraNode"
)

// KnownFields returns every well-known field key in declaration order.
func KnownFields() []FieldKey {
	return []FieldKey{
		FieldClusterName, FieldNamespace, FieldProvider, FieldRegion,
		FieldAccessKeyID, FieldSecretAccessKey, FieldSessionToken,
		FieldFlavor, FieldKubernetesVersion, FieldSSHKey,
		FieldReplicas, FieldMachineType, FieldVCPU, FieldMemory, FieldInfraNode,
	}
}

// fieldKinds pins the value kind of fields that only accept one.
var fieldKinds = map[FieldKey]ValueKind{
	FieldReplicas:  KindInt,
	FieldInfraNode: KindBool,
}

// ValueKind discriminates the variants of Value.
type ValueKind int

// Value kinds. KindNone is the zero Value and means "unset".
const (
	KindNone ValueKind = iota
	KindString
	KindInt
	KindBool
	KindOption
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindOption:
		return "option"
	default:
		return "none"
	}
}

// Value is a tagged union holding one field value.
type Value struct {
	kind ValueKind
	str  string
	num  int
	flag bool
	opt  Option
}

// StringValue returns a string field value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue returns an integer field value.
func IntValue(n int) Value { return Value{kind: KindInt, num: n} }

// BoolValue returns a boolean field value.
func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// OptionValue returns a selected-option field value.
func OptionValue(o Option) Value { return Value{kind: KindOption, opt: o} }

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// String returns the string variant.
func (v Value) String() (string, bool) { return v.str, v.kind == KindString }

// Int returns the integer variant.
func (v Value) Int() (int, bool) { return v.num, v.kind == KindInt }

// Bool returns the boolean variant.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Option returns the option variant.
func (v Value) Option() (Option, bool) { return v.opt, v.kind == KindOption }

// Present reports whether v counts as filled in for required-field checks.
// Strings must be non-blank and options must carry a value; integers and
// booleans are present whenever set.
func (v Value) Present() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) != ""
	case KindOption:
		return v.opt.Value != ""
	case KindInt, KindBool:
		return true
	default:
		return false
	}
}

// Text renders v as the plain string used for governing values and
// document fields. Options render as their Value.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindOption:
		return v.opt.Value
	case KindInt:
		return strconv.Itoa(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}
