package syschar

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// DocumentKind names the characteristics document for error reporting.
const DocumentKind = "system-characteristics"

type xmlDocument struct {
	XMLName       xml.Name    `xml:"oval_system_characteristics"`
	SchemaVersion string      `xml:"schema_version,attr"`
	SystemInfo    *xmlSysInfo `xml:"system_info,omitempty"`
	Collected     []xmlObject `xml:"collected_objects>object"`
	SystemData    []xmlItem   `xml:"system_data>item"`
}

type xmlSysInfo struct {
	OSName          string         `xml:"os_name"`
	OSVersion       string         `xml:"os_version"`
	Architecture    string         `xml:"architecture"`
	PrimaryHostName string         `xml:"primary_host_name"`
	Interfaces      []xmlInterface `xml:"interfaces>interface"`
}

type xmlInterface struct {
	Name       string `xml:"name"`
	IPAddress  string `xml:"ip_address,omitempty"`
	MACAddress string `xml:"mac_address,omitempty"`
}

type xmlObject struct {
	ID       string         `xml:"id,attr"`
	Flag     string         `xml:"flag,attr"`
	ItemRefs []xmlReference `xml:"reference"`
}

type xmlReference struct {
	ItemRef int `xml:"item_ref,attr"`
}

type xmlItem struct {
	ID     int        `xml:"id,attr"`
	Fields []xmlField `xml:"field"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

const schemaVersion = "5.11"

// Export serializes the model. Output is deterministic: objects appear in
// insertion order and item references ascend, so re-exporting an unchanged
// model is byte-identical.
func (m *Model) Export(w io.Writer) error {
	doc := xmlDocument{SchemaVersion: schemaVersion}

	if m.sysinfo != nil {
		si := &xmlSysInfo{
			OSName:          m.sysinfo.OSName,
			OSVersion:       m.sysinfo.OSVersion,
			Architecture:    m.sysinfo.Architecture,
			PrimaryHostName: m.sysinfo.PrimaryHostName,
		}
		for _, iface := range m.sysinfo.Interfaces {
			si.Interfaces = append(si.Interfaces, xmlInterface{
				Name:       iface.Name,
				IPAddress:  iface.IPAddress,
				MACAddress: iface.MACAddress,
			})
		}
		doc.SystemInfo = si
	}

	for _, co := range m.CollectedObjects() {
		obj := xmlObject{ID: co.ObjectID, Flag: string(co.Flag)}
		for _, item := range m.ItemsFor(co.ObjectID) {
			obj.ItemRefs = append(obj.ItemRefs, xmlReference{ItemRef: item.ID})
		}
		doc.Collected = append(doc.Collected, obj)

		for _, item := range m.ItemsFor(co.ObjectID) {
			entry := xmlItem{ID: item.ID}
			for _, f := range item.Fields {
				entry.Fields = append(entry.Fields, xmlField{Name: f.Name, Value: f.Value})
			}
			doc.SystemData = append(doc.SystemData, entry)
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ExportFile serializes the model to a file.
func (m *Model) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import populates an empty model from a previously exported document.
// A failed import leaves the error to the caller's cleanup contract; the
// model must be discarded.
func (m *Model) Import(path string) error {
	if len(m.collected) != 0 {
		return ovalerrors.NewImportError(path, DocumentKind, fmt.Errorf("model already populated"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ovalerrors.NewImportError(path, DocumentKind, err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ovalerrors.NewImportError(path, DocumentKind, err)
	}

	if doc.SystemInfo != nil {
		si := SysInfo{
			OSName:          doc.SystemInfo.OSName,
			OSVersion:       doc.SystemInfo.OSVersion,
			Architecture:    doc.SystemInfo.Architecture,
			PrimaryHostName: doc.SystemInfo.PrimaryHostName,
		}
		for _, iface := range doc.SystemInfo.Interfaces {
			si.Interfaces = append(si.Interfaces, Interface{
				Name:       iface.Name,
				IPAddress:  iface.IPAddress,
				MACAddress: iface.MACAddress,
			})
		}
		if err := m.SetSysInfo(&si); err != nil {
			return ovalerrors.NewImportError(path, DocumentKind, err)
		}
	}

	itemsByID := make(map[int][]Field, len(doc.SystemData))
	for _, entry := range doc.SystemData {
		fields := make([]Field, 0, len(entry.Fields))
		for _, f := range entry.Fields {
			fields = append(fields, Field{Name: f.Name, Value: f.Value})
		}
		itemsByID[entry.ID] = fields
	}

	for _, obj := range doc.Collected {
		if !knownFlags[Flag(obj.Flag)] {
			return ovalerrors.NewImportError(path, DocumentKind,
				fmt.Errorf("object %s has unknown collection flag %q", obj.ID, obj.Flag))
		}
		items := make([]Item, 0, len(obj.ItemRefs))
		for _, ref := range obj.ItemRefs {
			fields, found := itemsByID[ref.ItemRef]
			if !found {
				return ovalerrors.NewImportError(path, DocumentKind,
					fmt.Errorf("object %s references unknown item %d", obj.ID, ref.ItemRef))
			}
			items = append(items, Item{Fields: fields})
		}
		if err := m.AddCollected(obj.ID, Flag(obj.Flag), items); err != nil {
			return ovalerrors.NewImportError(path, DocumentKind, err)
		}
	}

	return nil
}
