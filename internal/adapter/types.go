package adapter

// StorageType tags the storage category of an adapter's values.
type StorageType int

const (
	StorageUnknown StorageType = iota
	StorageBoolean
	StorageByte
	StorageSByte
	StorageInt16
	StorageInt32
	StorageInt64
	StorageUInt16
	StorageUInt32
	StorageUInt64
	StorageSingle
	StorageDouble
	StorageDecimal
	StorageString
	StorageDateTime
	StorageDuration
	StorageGuid
)

var storageTypeNames = map[StorageType]string{
	StorageBoolean:  "Boolean",
	StorageByte:     "Byte",
	StorageSByte:    "SByte",
	StorageInt16:    "Int16",
	StorageInt32:    "Int32",
	StorageInt64:    "Int64",
	StorageUInt16:   "UInt16",
	StorageUInt32:   "UInt32",
	StorageUInt64:   "UInt64",
	StorageSingle:   "Single",
	StorageDouble:   "Double",
	StorageDecimal:  "Decimal",
	StorageString:   "String",
	StorageDateTime: "DateTime",
	StorageDuration: "Duration",
	StorageGuid:     "Guid",
}

func (s StorageType) String() string {
	if name, ok := storageTypeNames[s]; ok {
		return name
	}
	return "Unknown"
}

// SQLType tags the SQL column type an adapter's values are stored in.
type SQLType int

const (
	SQLUnknown SQLType = iota
	SQLBit
	SQLTinyInt
	SQLSmallInt
	SQLInt
	SQLBigInt
	SQLReal
	SQLFloat
	SQLDecimal
	SQLNVarChar
	SQLDateTime2
	SQLTime
	SQLUniqueIdentifier
)

var sqlTypeNames = map[SQLType]string{
	SQLBit:              "bit",
	SQLTinyInt:          "tinyint",
	SQLSmallInt:         "smallint",
	SQLInt:              "int",
	SQLBigInt:           "bigint",
	SQLReal:             "real",
	SQLFloat:            "float",
	SQLDecimal:          "decimal",
	SQLNVarChar:         "nvarchar",
	SQLDateTime2:        "datetime2",
	SQLTime:             "time",
	SQLUniqueIdentifier: "uniqueidentifier",
}

func (s SQLType) String() string {
	if name, ok := sqlTypeNames[s]; ok {
		return name
	}
	return "unknown"
}
