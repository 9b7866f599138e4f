package proteograph

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/models"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Repository provides read access to the nodes of one label, mapped onto the
// struct type T through its `graph` tags. The service never writes to the graph,
// so the repository has no mutating methods.
type Repository[T any] struct {
	runner DBRunner
	meta   *entityMetadata
}

// NewRepository creates a new generic repository for the type T.
// It parses the struct tags of T to understand its mapping to a Neo4j node.
//
// Parameters:
//   - runner: An instance of DBRunner, used to execute all Cypher queries.
//
// Returns:
//
//	A new Repository instance or an error if the struct tags are invalid.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	meta, err := parseTags[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		runner: runner,
		meta:   meta,
	}, nil
}

// FindByID retrieves a single entity from the database by its primary key.
//
// Returns:
//
//	A pointer to the found entity, ErrNotFound if no record is found, or another
//	error if the query or mapping fails.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	props := map[string]any{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		Return("n").
		Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	eagerResult, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}
	if len(eagerResult.Records) > 1 {
		// A primary key lookup should be unique.
		return nil, fmt.Errorf("%w: expected 1 %s but found %d", ErrMalformedResult, r.meta.Label, len(eagerResult.Records))
	}

	return r.entityFromRecord(eagerResult.Records[0])
}

// FindAll retrieves every node carrying the repository's label, mapped onto T.
// A property whose type does not fit its field fails the whole call; use
// FindAllNodes to read nodes whose properties are not under this package's control.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	eagerResult, err := r.runAll(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0, len(eagerResult.Records))
	for _, record := range eagerResult.Records {
		entity, err := r.entityFromRecord(record)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// FindAllNodes retrieves every node carrying the repository's label with its
// complete property map, including properties T does not declare.
func (r *Repository[T]) FindAllNodes(ctx context.Context) ([]*models.Node, error) {
	eagerResult, err := r.runAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.Node, 0, len(eagerResult.Records))
	for _, record := range eagerResult.Records {
		node, err := nodeFromRecord(record)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &models.Node{ID: node.ElementId, Labels: node.Labels, Properties: node.Props})
	}
	return nodes, nil
}

func (r *Repository[T]) runAll(ctx context.Context) (*neo4j.EagerResult, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label)).
		Return("n").
		Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	eagerResult, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if eagerResult == nil {
		return &neo4j.EagerResult{}, nil
	}
	return eagerResult, nil
}

func nodeFromRecord(record *neo4j.Record) (neo4j.Node, error) {
	nodeValue, ok := record.Get("n")
	if !ok {
		return neo4j.Node{}, fmt.Errorf("%w: could not find return value 'n' in query result", ErrMalformedResult)
	}
	node, ok := nodeValue.(neo4j.Node)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("%w: return value 'n' is not a node", ErrMalformedResult)
	}
	return node, nil
}

func (r *Repository[T]) entityFromRecord(record *neo4j.Record) (*T, error) {
	node, err := nodeFromRecord(record)
	if err != nil {
		return nil, err
	}

	entity := new(T)
	if err := mapNodeToStruct(node, entity, r.meta); err != nil {
		return nil, err
	}
	return entity, nil
}

// mapNodeToStruct populates a struct's fields from a neo4j.Node's properties,
// based on the parsed metadata. Values are converted to the field type when
// the conversion is lossless in kind (int64 to int, float64 to float32, ...).
func mapNodeToStruct(node neo4j.Node, entity any, meta *entityMetadata) error {
	val := reflect.ValueOf(entity).Elem()

	for fieldName, propName := range meta.Mappings {
		field := val.FieldByName(fieldName)
		if !field.IsValid() || !field.CanSet() {
			continue
		}

		propValue, ok := node.Props[propName]
		if !ok || propValue == nil {
			continue
		}

		pv := reflect.ValueOf(propValue)
		switch {
		case pv.Type().AssignableTo(field.Type()):
			field.Set(pv)
		case convertible(pv.Kind(), field.Kind()):
			field.Set(pv.Convert(field.Type()))
		default:
			return fmt.Errorf("%w: property %q of type %T cannot be stored in field %s (%s)",
				ErrMalformedResult, propName, propValue, fieldName, field.Type())
		}
	}
	return nil
}

func convertible(from, to reflect.Kind) bool {
	return (isInt(from) && isInt(to)) || (isFloat(from) && isFloat(to)) || (isInt(from) && isFloat(to))
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
