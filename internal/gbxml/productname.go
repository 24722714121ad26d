package gbxml

import (
	"bytes"
	"fmt"
	"os"
)

// ProductNamePrefix marks gbXML files produced through this toolkit
const ProductNamePrefix = "Dynamo _ "

// StampProductName prefixes the text of every ProductName element found at
// <root>/<any>/ProgramInfo/ProductName and returns how many were changed.
func StampProductName(doc *Document, prefix string) int {
	stamped := 0
	for _, section := range doc.Root.Children {
		if !section.IsElement() {
			continue
		}
		for _, info := range section.Elements("ProgramInfo") {
			for _, product := range info.Elements("ProductName") {
				product.SetText(prefix + product.Text())
				stamped++
			}
		}
	}
	return stamped
}

// StampFile loads path, stamps its product names and saves it in place
func StampFile(path, prefix string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read gbxml: %w", err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}

	n := StampProductName(doc, prefix)

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return 0, fmt.Errorf("encode gbxml: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat gbxml: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("write gbxml: %w", err)
	}
	return n, nil
}
