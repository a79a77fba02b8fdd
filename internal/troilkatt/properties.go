// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package troilkatt

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Properties holds the name to value mapping of a Troilkatt configuration
// file.
type Properties map[string]string

// ReadProperties returns the properties held in the XML configuration file
// at path.
func ReadProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := DecodeProperties(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodeProperties decodes a configuration document in the form
//
//  <configuration>
//  	<property>
//  		<name>troilkatt.localfs.dir</name>
//  		<value>/nhome/troilkatt</value>
//  	</property>
//  </configuration>
//
// Leading and trailing white space is removed from names and values.
func DecodeProperties(r io.Reader) (Properties, error) {
	var doc struct {
		Property []struct {
			Name  []string `xml:"name"`
			Value []string `xml:"value"`
		} `xml:"property"`
	}
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, err
	}
	p := make(Properties)
	for _, e := range doc.Property {
		if len(e.Name) != 1 || len(e.Value) > 1 {
			return nil, fmt.Errorf("invalid property element: names=%q values=%q", e.Name, e.Value)
		}
		var v string
		if len(e.Value) != 0 {
			v = strings.TrimSpace(e.Value[0])
		}
		p[strings.TrimSpace(e.Name[0])] = v
	}
	return p, nil
}

// Get returns the value of the named property. It returns an error if the
// configuration does not hold the property.
func (p Properties) Get(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", fmt.Errorf("configuration file does not have property: %s", name)
	}
	return v, nil
}
