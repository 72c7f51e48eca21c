package cli

// TabWidth is the padding between columns in tabular output.
const TabWidth = 2
