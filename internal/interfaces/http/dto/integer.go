// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"math"
	"reflect"
)

var intType = reflect.TypeOf(int64(0))

// Int 请求体中的整数字段，接受 5 与 5.0 这类整数值数字
type Int int64

// UnmarshalJSON 解析整数值数字，小数或非数字返回 UnmarshalTypeError
func (n *Int) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		return &json.UnmarshalTypeError{Value: "string", Type: intType}
	case 't', 'f':
		return &json.UnmarshalTypeError{Value: "bool", Type: intType}
	case '{':
		return &json.UnmarshalTypeError{Value: "object", Type: intType}
	case '[':
		return &json.UnmarshalTypeError{Value: "array", Type: intType}
	}

	num := json.Number(data)
	if v, err := num.Int64(); err == nil {
		*n = Int(v)
		return nil
	}

	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return &json.UnmarshalTypeError{Value: "number " + string(data), Type: intType}
	}
	*n = Int(f)
	return nil
}

// Int64 返回 int64 值
func (n Int) Int64() int64 {
	return int64(n)
}

func int64Ptr(n *Int) *int64 {
	if n == nil {
		return nil
	}
	v := n.Int64()
	return &v
}
