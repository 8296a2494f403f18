/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package snmp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Variable is one OID and its value as returned by an agent.
type Variable struct {
	OID   string
	Type  gosnmp.Asn1BER
	Value interface{}
}

func fromPDU(pdu gosnmp.SnmpPDU) Variable {
	return Variable{OID: pdu.Name, Type: pdu.Type, Value: pdu.Value}
}

// Missing reports an exception value in place of data.
func (v Variable) Missing() bool {
	switch v.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return true
	default:
		return v.Value == nil
	}
}

func (v Variable) numeric() bool {
	switch v.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks,
		gosnmp.Counter64, gosnmp.Uinteger32:
		return true
	default:
		return false
	}
}

// Uint64 returns a counter or gauge value.
func (v Variable) Uint64() (uint64, error) {
	if v.Missing() {
		return 0, fmt.Errorf("%w: %s", ErrNoValue, v.OID)
	}

	if !v.numeric() {
		return 0, fmt.Errorf("%w: %s is %s", ErrNotNumeric, v.OID, v.Type)
	}

	n := gosnmp.ToBigInt(v.Value)
	if n.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s = %s", ErrNegativeValue, v.OID, n)
	}

	return n.Uint64(), nil
}

// Int returns an INTEGER value, such as an enumerated status.
func (v Variable) Int() (int64, error) {
	if v.Missing() {
		return 0, fmt.Errorf("%w: %s", ErrNoValue, v.OID)
	}

	if !v.numeric() {
		return 0, fmt.Errorf("%w: %s is %s", ErrNotNumeric, v.OID, v.Type)
	}

	return gosnmp.ToBigInt(v.Value).Int64(), nil
}

// String renders an OCTET STRING as text and anything else with %v.
func (v Variable) String() string {
	switch value := v.Value.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}

// Index is the last arc of the OID, the row index of a simple table.
func (v Variable) Index() (int, error) {
	i := strings.LastIndexByte(v.OID, '.')

	idx, err := strconv.Atoi(v.OID[i+1:])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidIndex, v.OID)
	}

	return idx, nil
}

// Suffix is what follows root in the OID, without the leading dot.
func (v Variable) Suffix(root string) (string, bool) {
	oid := strings.TrimPrefix(v.OID, ".")
	root = strings.TrimPrefix(root, ".")

	if !strings.HasPrefix(oid, root+".") {
		return "", false
	}

	return oid[len(root)+1:], true
}
