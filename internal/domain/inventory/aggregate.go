package inventory

// Line par (producto, cantidad) de una solicitud.
type Line struct {
	ProductID string
	Quantity  int64
}

// Aggregate agrupa las líneas que referencian el mismo producto y suma sus cantidades,
// conservando el orden de primera aparición. Así una salida con dos líneas del mismo
// producto se valida contra el total pedido y no línea por línea.
// Las líneas sin ProductID (manuales) se ignoran: no mueven stock.
func Aggregate(lines []Line) []Line {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
