package core

// Prepare projects a normalized batch down to exactly the persisted column
// set (TicketColumns) and stamps every row with uploadID. Optional columns
// that were absent from the source batch are filled with their defaults so
// every stored row has a uniform shape; source columns outside the persisted
// set are dropped. Purely structural, no error cases.
func Prepare(nb NormalizedBatch, uploadID int64) []Ticket {
	tickets := make([]Ticket, 0, len(nb.Rows))

	for _, row := range nb.Rows {
		tickets = append(tickets, Ticket{
			TicketID:         row.TicketID,
			UploadID:         uploadID,
			CreatedAt:        row.CreatedAt,
			TextContent:      row.TextContent,
			Product:          optionalField(row, ColProduct),
			Channel:          optionalField(row, ColChannel),
			OriginalPriority: optionalField(row, ColOriginalPriority),
			CustomerTier:     optionalField(row, ColCustomerTier),
			CustomerID:       optionalField(row, ColCustomerID),
			TextLength:       row.TextLength,
			CreatedDate:      row.CreatedDate,
			CreatedMonth:     row.CreatedMonth,
			LastUpdated:      row.LastUpdated,
		})
	}

	return tickets
}

// optionalField resolves an optional column for one row: the source value if
// present and non-null, otherwise the column's default.
func optionalField(row NormalizedRow, col string) string {
	if val, ok := row.Optional[col]; ok && !val.Null {
		return val.Raw
	}
	return OptionalDefaults[col]
}
