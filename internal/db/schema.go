package db

// SchemaDescription returns the fixed schema text inlined into the query
// generation prompt. Kept as prose rather than derived from sqlite_master so
// the column semantics stay documented for the model.
func SchemaDescription() string {
	return `Table: fraud_transactions
Columns:
  - row_index (INTEGER): Original row index
  - trans_date_trans_time (TEXT): Transaction datetime as 'YYYY-MM-DD HH:MM:SS'
  - cc_num (INTEGER): Credit card number
  - merchant (TEXT): Merchant name (prefixed with 'fraud_')
  - category (TEXT): Transaction category (e.g., 'misc_net', 'grocery_pos', 'shopping_net')
  - amt (REAL): Transaction amount in USD
  - first (TEXT): Cardholder first name
  - last (TEXT): Cardholder last name
  - gender (TEXT): Cardholder gender ('M' or 'F')
  - street (TEXT): Cardholder street address
  - city (TEXT): Cardholder city
  - state (TEXT): Cardholder state (2-letter code)
  - zip (INTEGER): Cardholder ZIP code
  - lat (REAL): Cardholder latitude
  - long (REAL): Cardholder longitude
  - city_pop (INTEGER): City population
  - job (TEXT): Cardholder job title
  - dob (TEXT): Date of birth as 'YYYY-MM-DD'
  - trans_num (TEXT): Unique transaction ID
  - unix_time (INTEGER): Unix timestamp
  - merch_lat (REAL): Merchant latitude
  - merch_long (REAL): Merchant longitude
  - is_fraud (INTEGER): 1 = fraudulent, 0 = legitimate

Use strftime() for date grouping. Example: strftime('%Y-%m', trans_date_trans_time)`
}
