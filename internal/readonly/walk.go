package readonly

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// The functions below perform a plain recursive walk over the parse tree,
// dispatching on the node tag. They return false as soon as a CTE or
// subquery body is found that is not itself a SELECT (which in the
// Postgres grammar also covers VALUES constant tables), so a violation at
// any depth rejects the whole statement.

// isSelect reports whether node is a SELECT statement node.
func isSelect(node *pg_query.Node) bool {
	if node == nil {
		return false
	}
	_, ok := node.Node.(*pg_query.Node_SelectStmt)
	return ok
}

// walkSelect checks a SELECT statement and everything hanging off it.
func walkSelect(s *pg_query.SelectStmt) bool {
	if s == nil {
		return true
	}
	// SELECT INTO creates a table; a read-only statement must not
	// mutate persisted state.
	if s.IntoClause != nil {
		return false
	}
	if s.WithClause != nil {
		for _, cte := range s.WithClause.Ctes {
			c, ok := cte.Node.(*pg_query.Node_CommonTableExpr)
			if !ok {
				continue
			}
			if !isSelect(c.CommonTableExpr.Ctequery) {
				return false
			}
			if !walkNode(c.CommonTableExpr.Ctequery) {
				return false
			}
		}
	}
	return walkList(s.DistinctClause) &&
		walkList(s.TargetList) &&
		walkList(s.FromClause) &&
		walkNode(s.WhereClause) &&
		walkList(s.GroupClause) &&
		walkNode(s.HavingClause) &&
		walkList(s.WindowClause) &&
		walkList(s.ValuesLists) &&
		walkList(s.SortClause) &&
		walkNode(s.LimitOffset) &&
		walkNode(s.LimitCount) &&
		walkSelect(s.Larg) &&
		walkSelect(s.Rarg)
}

func walkList(nodes []*pg_query.Node) bool {
	for _, n := range nodes {
		if !walkNode(n) {
			return false
		}
	}
	return true
}

func walkWindowDef(w *pg_query.WindowDef) bool {
	if w == nil {
		return true
	}
	return walkList(w.PartitionClause) &&
		walkList(w.OrderClause) &&
		walkNode(w.StartOffset) &&
		walkNode(w.EndOffset)
}

// walkNode recursively checks a single node. Node kinds that cannot
// contain a sub-select are accepted as-is by the default case.
func walkNode(node *pg_query.Node) bool {
	if node == nil {
		return true
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		return walkSelect(n.SelectStmt)
	case *pg_query.Node_RangeSubselect:
		if !isSelect(n.RangeSubselect.Subquery) {
			return false
		}
		return walkNode(n.RangeSubselect.Subquery)
	case *pg_query.Node_SubLink:
		if !isSelect(n.SubLink.Subselect) {
			return false
		}
		return walkNode(n.SubLink.Testexpr) && walkNode(n.SubLink.Subselect)
	case *pg_query.Node_JoinExpr:
		return walkNode(n.JoinExpr.Larg) &&
			walkNode(n.JoinExpr.Rarg) &&
			walkNode(n.JoinExpr.Quals)
	case *pg_query.Node_RangeFunction:
		return walkList(n.RangeFunction.Functions)
	case *pg_query.Node_ResTarget:
		return walkNode(n.ResTarget.Val)
	case *pg_query.Node_AExpr:
		return walkNode(n.AExpr.Lexpr) && walkNode(n.AExpr.Rexpr)
	case *pg_query.Node_BoolExpr:
		return walkList(n.BoolExpr.Args)
	case *pg_query.Node_FuncCall:
		return walkList(n.FuncCall.Args) &&
			walkList(n.FuncCall.AggOrder) &&
			walkNode(n.FuncCall.AggFilter) &&
			walkWindowDef(n.FuncCall.Over)
	case *pg_query.Node_NamedArgExpr:
		return walkNode(n.NamedArgExpr.Arg)
	case *pg_query.Node_CaseExpr:
		return walkNode(n.CaseExpr.Arg) &&
			walkList(n.CaseExpr.Args) &&
			walkNode(n.CaseExpr.Defresult)
	case *pg_query.Node_CaseWhen:
		return walkNode(n.CaseWhen.Expr) && walkNode(n.CaseWhen.Result)
	case *pg_query.Node_CoalesceExpr:
		return walkList(n.CoalesceExpr.Args)
	case *pg_query.Node_MinMaxExpr:
		return walkList(n.MinMaxExpr.Args)
	case *pg_query.Node_NullTest:
		return walkNode(n.NullTest.Arg)
	case *pg_query.Node_BooleanTest:
		return walkNode(n.BooleanTest.Arg)
	case *pg_query.Node_TypeCast:
		return walkNode(n.TypeCast.Arg)
	case *pg_query.Node_CollateClause:
		return walkNode(n.CollateClause.Arg)
	case *pg_query.Node_RowExpr:
		return walkList(n.RowExpr.Args)
	case *pg_query.Node_AArrayExpr:
		return walkList(n.AArrayExpr.Elements)
	case *pg_query.Node_AIndirection:
		return walkNode(n.AIndirection.Arg)
	case *pg_query.Node_SortBy:
		return walkNode(n.SortBy.Node)
	case *pg_query.Node_WindowDef:
		return walkWindowDef(n.WindowDef)
	case *pg_query.Node_GroupingSet:
		return walkList(n.GroupingSet.Content)
	case *pg_query.Node_GroupingFunc:
		return walkList(n.GroupingFunc.Args)
	case *pg_query.Node_XmlExpr:
		return walkList(n.XmlExpr.Args) && walkList(n.XmlExpr.NamedArgs)
	case *pg_query.Node_List:
		return walkList(n.List.Items)
	default:
		return true
	}
}
